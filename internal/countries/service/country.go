package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	countrieserrors "countries/internal/countries/errors"
	"countries/internal/countries/metrics"
	"countries/internal/countries/repository"
	"countries/internal/countries/validator"
	apperrors "countries/pkg/errors"
	"countries/pkg/logger"
	"countries/pkg/model"
)

const (
	resourceCountry = "Country"
	storeName       = "Country store"

	opGetAll         = "get_all"
	opGetByName      = "get_by_name"
	opGetByCapital   = "get_by_capital"
	opGetByRegion    = "get_by_region"
	opGetBySubregion = "get_by_subregion"
)

type CountryService interface {
	GetAll(ctx context.Context, opts model.ExcludeOptions) ([]*model.Country, error)
	GetByName(ctx context.Context, name string, opts model.ExcludeOptions) (*model.Country, error)
	GetByCapital(ctx context.Context, capital string, opts model.ExcludeOptions) (*model.Country, error)
	GetByRegion(ctx context.Context, region string, opts model.ExcludeOptions) ([]*model.Country, error)
	GetBySubregion(ctx context.Context, subregion string, opts model.ExcludeOptions) ([]*model.Country, error)
}

// MissRecorder is told about every field lookup that matched nothing.
// Implementations must not block the caller.
type MissRecorder interface {
	RecordMiss(ctx context.Context, field model.LookupField, value string)
}

type noopMissRecorder struct{}

func (noopMissRecorder) RecordMiss(context.Context, model.LookupField, string) {}

type Option func(*countryService)

func WithMissRecorder(r MissRecorder) Option {
	return func(s *countryService) {
		if r != nil {
			s.misses = r
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *countryService) {
		s.tracer = t
	}
}

type countryService struct {
	repo      repository.CountryRepository
	validator *validator.LookupValidator
	metrics   *metrics.Metrics
	misses    MissRecorder
	tracer    trace.Tracer
	log       *logger.Logger
}

func NewCountryService(
	repo repository.CountryRepository,
	validator *validator.LookupValidator,
	m *metrics.Metrics,
	log *logger.Logger,
	opts ...Option,
) CountryService {
	s := &countryService{
		repo:      repo,
		validator: validator,
		metrics:   m,
		misses:    noopMissRecorder{},
		tracer:    otel.Tracer("countries/service"),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *countryService) GetAll(ctx context.Context, opts model.ExcludeOptions) (countries []*model.Country, err error) {
	ctx, finish := s.begin(ctx, opGetAll, 0, "", opts)
	defer func() { finish(err) }()

	countries, err = s.repo.FindAll(ctx, opts)
	if err != nil {
		return nil, s.storeFailure(ctx, opGetAll, err)
	}
	if len(countries) == 0 {
		s.metrics.IncrementMiss("all")
		return nil, apperrors.NoContent("Countries")
	}
	return countries, nil
}

func (s *countryService) GetByName(ctx context.Context, name string, opts model.ExcludeOptions) (*model.Country, error) {
	return s.getOne(ctx, opGetByName, model.FieldName, name, opts)
}

func (s *countryService) GetByCapital(ctx context.Context, capital string, opts model.ExcludeOptions) (*model.Country, error) {
	return s.getOne(ctx, opGetByCapital, model.FieldCapital, capital, opts)
}

func (s *countryService) GetByRegion(ctx context.Context, region string, opts model.ExcludeOptions) ([]*model.Country, error) {
	return s.getMany(ctx, opGetByRegion, model.FieldRegion, region, opts)
}

func (s *countryService) GetBySubregion(ctx context.Context, subregion string, opts model.ExcludeOptions) ([]*model.Country, error) {
	return s.getMany(ctx, opGetBySubregion, model.FieldSubregion, subregion, opts)
}

func (s *countryService) getOne(ctx context.Context, op string, field model.LookupField, value string, opts model.ExcludeOptions) (country *model.Country, err error) {
	ctx, finish := s.begin(ctx, op, field, value, opts)
	defer func() { finish(err) }()

	if err = s.validate(field, value); err != nil {
		return nil, err
	}

	country, err = s.repo.FindOneBy(ctx, field, value, opts)
	if err != nil {
		return nil, s.storeFailure(ctx, op, err)
	}
	if country == nil {
		s.miss(ctx, field, value)
		return nil, apperrors.NoContent(resourceCountry)
	}
	return country, nil
}

func (s *countryService) getMany(ctx context.Context, op string, field model.LookupField, value string, opts model.ExcludeOptions) (countries []*model.Country, err error) {
	ctx, finish := s.begin(ctx, op, field, value, opts)
	defer func() { finish(err) }()

	if err = s.validate(field, value); err != nil {
		return nil, err
	}

	countries, err = s.repo.FindAllBy(ctx, field, value, opts)
	if err != nil {
		return nil, s.storeFailure(ctx, op, err)
	}
	if len(countries) == 0 {
		s.miss(ctx, field, value)
		return nil, apperrors.NoContent("Countries")
	}
	return countries, nil
}

func (s *countryService) validate(field model.LookupField, value string) error {
	if err := s.validator.Validate(validator.LookupRequest{Field: field, Value: value}); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

func (s *countryService) storeFailure(ctx context.Context, op string, err error) error {
	if errors.Is(err, countrieserrors.ErrInvalidField) {
		return apperrors.InvalidInput(err.Error())
	}
	logger.FromContext(ctx, s.log).Error("Country lookup failed",
		"operation", op,
		"error", err,
	)
	return apperrors.Unavailable(storeName, err)
}

func (s *countryService) miss(ctx context.Context, field model.LookupField, value string) {
	s.metrics.IncrementMiss(field.String())
	s.misses.RecordMiss(ctx, field, value)
}

// begin opens the span for a lookup and returns the callback that closes it
// and records the outcome.
func (s *countryService) begin(ctx context.Context, op string, field model.LookupField, value string, opts model.ExcludeOptions) (context.Context, func(error)) {
	start := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("countries.operation", op),
		attribute.Bool("countries.exclude_states", opts.ExcludeStates),
		attribute.Bool("countries.exclude_cities", opts.ExcludeCities),
	}
	if field.Valid() {
		attrs = append(attrs,
			attribute.String("countries.field", field.String()),
			attribute.String("countries.value", value),
		)
	}
	ctx, span := s.tracer.Start(ctx, "countries."+op, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := outcomeOf(err)
		s.metrics.ObserveLookup(op, outcome, start)
		span.SetAttributes(attribute.String("countries.outcome", outcome))
		if outcome == metrics.OutcomeUnavailable {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeFound
	case apperrors.IsNotFound(err):
		return metrics.OutcomeNotFound
	case apperrors.IsUnavailable(err):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeInvalid
	}
}
