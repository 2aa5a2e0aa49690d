package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"countries/internal/countries/metrics"
	"countries/internal/countries/repository"
	"countries/pkg/logger"
	"countries/pkg/model"
	"countries/pkg/sanitizer"
)

const keyPrefix = "countries:v1"

// store is the part of the Redis API the cache needs. Get reports a miss
// with redis.Nil.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct {
	client *redis.Client
}

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.Get(ctx, key).Bytes()
}

func (s redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// CountryRepository is a read-through Redis cache in front of another
// repository. Concurrent misses for the same key share one upstream call.
// Redis failures degrade to the upstream repository.
type CountryRepository struct {
	next    repository.CountryRepository
	store   store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	log     *logger.Logger
}

var _ repository.CountryRepository = (*CountryRepository)(nil)

func NewCountryRepository(next repository.CountryRepository, client *redis.Client, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *CountryRepository {
	return newCountryRepository(next, redisStore{client: client}, ttl, m, log)
}

func newCountryRepository(next repository.CountryRepository, s store, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *CountryRepository {
	return &CountryRepository{
		next:    next,
		store:   s,
		ttl:     ttl,
		metrics: m,
		log:     log,
	}
}

func (c *CountryRepository) FindAll(ctx context.Context, opts model.ExcludeOptions) ([]*model.Country, error) {
	key := cacheKey("all", 0, "", opts.ForCollection())
	return readThrough(ctx, c, "find_all", key, func(ctx context.Context) ([]*model.Country, bool, error) {
		countries, err := c.next.FindAll(ctx, opts)
		return countries, len(countries) > 0, err
	})
}

func (c *CountryRepository) FindOneBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) (*model.Country, error) {
	if !field.Valid() {
		return c.next.FindOneBy(ctx, field, value, opts)
	}
	key := cacheKey("one", field, value, opts)
	return readThrough(ctx, c, "find_one_by", key, func(ctx context.Context) (*model.Country, bool, error) {
		country, err := c.next.FindOneBy(ctx, field, value, opts)
		return country, country != nil, err
	})
}

func (c *CountryRepository) FindAllBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) ([]*model.Country, error) {
	if !field.Valid() {
		return c.next.FindAllBy(ctx, field, value, opts)
	}
	key := cacheKey("many", field, value, opts.ForCollection())
	return readThrough(ctx, c, "find_all_by", key, func(ctx context.Context) ([]*model.Country, bool, error) {
		countries, err := c.next.FindAllBy(ctx, field, value, opts)
		return countries, len(countries) > 0, err
	})
}

// readThrough serves key from Redis, falling back to load on a miss or a
// Redis error. load reports whether its result may be cached; absent and
// empty results never are.
func readThrough[T any](ctx context.Context, c *CountryRepository, op, key string, load func(context.Context) (T, bool, error)) (T, error) {
	log := logger.FromContext(ctx, c.log)

	var cached T
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			c.metrics.IncrementCache(op, metrics.CacheHit)
			return cached, nil
		}
		log.Warn("Discarding undecodable cache entry", "key", key, "error", jsonErr)
		c.metrics.IncrementCache(op, metrics.CacheError)
	case errors.Is(err, redis.Nil):
		c.metrics.IncrementCache(op, metrics.CacheMiss)
	default:
		log.Warn("Cache read failed, falling back to store", "key", key, "error", err)
		c.metrics.IncrementCache(op, metrics.CacheError)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		result, cacheable, err := load(ctx)
		if err != nil {
			return result, err
		}
		if cacheable {
			c.write(ctx, key, result)
		}
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *CountryRepository) write(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		logger.FromContext(ctx, c.log).Warn("Cache write failed", "key", key, "error", err)
	}
}

// cacheKey identifies a query by shape, field, matched value and effective
// projection. Name lookups go through text search on the normalized value,
// so their keys use it too. Collation lookups only fold case.
func cacheKey(shape string, field model.LookupField, value string, opts model.ExcludeOptions) string {
	var matched string
	switch field {
	case 0:
	case model.FieldName:
		matched = sanitizer.Normalize(value)
	default:
		matched = strings.ToLower(value)
	}
	return fmt.Sprintf("%s:%s:%s:%s:s%d:c%d",
		keyPrefix, shape, field.Key(), matched,
		boolDigit(opts.ExcludeStates), boolDigit(opts.ExcludeCities),
	)
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}
