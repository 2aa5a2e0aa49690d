package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countries/internal/countries/metrics"
	"countries/pkg/logger"
	"countries/pkg/model"
)

type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.setKeys = append(s.setKeys, key)
	return nil
}

type mockCountryRepository struct {
	findAllFunc   func(ctx context.Context, opts model.ExcludeOptions) ([]*model.Country, error)
	findOneByFunc func(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) (*model.Country, error)
	findAllByFunc func(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) ([]*model.Country, error)
}

func (m *mockCountryRepository) FindAll(ctx context.Context, opts model.ExcludeOptions) ([]*model.Country, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, opts)
	}
	return []*model.Country{}, nil
}

func (m *mockCountryRepository) FindOneBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) (*model.Country, error) {
	if m.findOneByFunc != nil {
		return m.findOneByFunc(ctx, field, value, opts)
	}
	return nil, nil
}

func (m *mockCountryRepository) FindAllBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) ([]*model.Country, error) {
	if m.findAllByFunc != nil {
		return m.findAllByFunc(ctx, field, value, opts)
	}
	return []*model.Country{}, nil
}

func newTestCache(next *mockCountryRepository, s store) (*CountryRepository, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return newCountryRepository(next, s, time.Hour, m, logger.Discard()), m
}

func TestFindOneBy_ReadThrough(t *testing.T) {
	var calls int32
	next := &mockCountryRepository{
		findOneByFunc: func(context.Context, model.LookupField, string, model.ExcludeOptions) (*model.Country, error) {
			atomic.AddInt32(&calls, 1)
			return &model.Country{Code: "FR", Name: "France", States: []model.State{{Code: "BRE"}}}, nil
		},
	}
	s := newMemoryStore()
	c, m := newTestCache(next, s)
	ctx := context.Background()

	first, err := c.FindOneBy(ctx, model.FieldCapital, "Paris", model.ExcludeOptions{})
	require.NoError(t, err)
	second, err := c.FindOneBy(ctx, model.FieldCapital, "PARIS", model.ExcludeOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.Code, second.Code)
	assert.Len(t, second.States, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cache.WithLabelValues("find_one_by", metrics.CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cache.WithLabelValues("find_one_by", metrics.CacheMiss)))
}

func TestFindOneBy_OptionsAreSeparateEntries(t *testing.T) {
	var calls int32
	next := &mockCountryRepository{
		findOneByFunc: func(context.Context, model.LookupField, string, model.ExcludeOptions) (*model.Country, error) {
			atomic.AddInt32(&calls, 1)
			return &model.Country{Code: "FR"}, nil
		},
	}
	c, _ := newTestCache(next, newMemoryStore())
	ctx := context.Background()

	_, err := c.FindOneBy(ctx, model.FieldCapital, "Paris", model.ExcludeOptions{})
	require.NoError(t, err)
	_, err = c.FindOneBy(ctx, model.FieldCapital, "Paris", model.ExcludeOptions{ExcludeStates: true})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFindOneBy_AbsentIsNotCached(t *testing.T) {
	var calls int32
	next := &mockCountryRepository{
		findOneByFunc: func(context.Context, model.LookupField, string, model.ExcludeOptions) (*model.Country, error) {
			atomic.AddInt32(&calls, 1)
			return nil, nil
		},
	}
	s := newMemoryStore()
	c, _ := newTestCache(next, s)

	for i := 0; i < 2; i++ {
		country, err := c.FindOneBy(context.Background(), model.FieldCapital, "Atlantis", model.ExcludeOptions{})
		require.NoError(t, err)
		assert.Nil(t, country)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Empty(t, s.setKeys)
}

func TestFindAllBy_EmptyIsNotCached(t *testing.T) {
	s := newMemoryStore()
	c, _ := newTestCache(&mockCountryRepository{}, s)

	countries, err := c.FindAllBy(context.Background(), model.FieldRegion, "Nonexistent Region", model.ExcludeOptions{})
	require.NoError(t, err)
	assert.Empty(t, countries)
	assert.Empty(t, s.setKeys)
}

func TestFindAll_CollectionKeyIgnoresCitiesFlag(t *testing.T) {
	var calls int32
	next := &mockCountryRepository{
		findAllFunc: func(context.Context, model.ExcludeOptions) ([]*model.Country, error) {
			atomic.AddInt32(&calls, 1)
			return []*model.Country{{Code: "FR"}}, nil
		},
	}
	c, _ := newTestCache(next, newMemoryStore())
	ctx := context.Background()

	_, err := c.FindAll(ctx, model.ExcludeOptions{ExcludeCities: false})
	require.NoError(t, err)
	_, err = c.FindAll(ctx, model.ExcludeOptions{ExcludeCities: true})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "both requests resolve to the same effective projection")
}

func TestRedisFailureFallsThrough(t *testing.T) {
	next := &mockCountryRepository{
		findAllByFunc: func(context.Context, model.LookupField, string, model.ExcludeOptions) ([]*model.Country, error) {
			return []*model.Country{{Code: "DE"}}, nil
		},
	}
	s := newMemoryStore()
	s.getErr = errors.New("dial tcp: connection refused")
	s.setErr = errors.New("dial tcp: connection refused")
	c, m := newTestCache(next, s)

	countries, err := c.FindAllBy(context.Background(), model.FieldRegion, "Europe", model.ExcludeOptions{})
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "DE", countries[0].Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cache.WithLabelValues("find_all_by", metrics.CacheError)))
}

func TestStoreErrorIsPropagatedAndNotCached(t *testing.T) {
	cause := errors.New("server selection timeout")
	next := &mockCountryRepository{
		findAllByFunc: func(context.Context, model.LookupField, string, model.ExcludeOptions) ([]*model.Country, error) {
			return nil, cause
		},
	}
	s := newMemoryStore()
	c, _ := newTestCache(next, s)

	_, err := c.FindAllBy(context.Background(), model.FieldSubregion, "Western Europe", model.ExcludeOptions{})
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, s.setKeys)
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	next := &mockCountryRepository{
		findAllByFunc: func(context.Context, model.LookupField, string, model.ExcludeOptions) ([]*model.Country, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return []*model.Country{{Code: "FR"}}, nil
		},
	}
	c, _ := newTestCache(next, newMemoryStore())

	const callers = 10
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			countries, err := c.FindAllBy(context.Background(), model.FieldRegion, "Europe", model.ExcludeOptions{})
			assert.NoError(t, err)
			assert.Len(t, countries, 1)
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name  string
		shape string
		field model.LookupField
		value string
		opts  model.ExcludeOptions
		want  string
	}{
		{
			name:  "name is normalized",
			shape: "one",
			field: model.FieldName,
			value: "Côte D'Ivoire",
			want:  "countries:v1:one:name:cote d ivoire:s0:c0",
		},
		{
			name:  "capital folds case only",
			shape: "one",
			field: model.FieldCapital,
			value: "Brasília",
			opts:  model.ExcludeOptions{ExcludeStates: true},
			want:  "countries:v1:one:capital:brasília:s1:c0",
		},
		{
			name:  "all has no field",
			shape: "all",
			opts:  model.ExcludeOptions{ExcludeCities: true},
			want:  "countries:v1:all:::s0:c1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cacheKey(tt.shape, tt.field, tt.value, tt.opts))
		})
	}
}
