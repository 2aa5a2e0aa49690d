package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	Lookups        *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	Misses         *prometheus.CounterVec
	Cache          *prometheus.CounterVec
}

// New registers the lookup metrics on reg. Passing a fresh registry keeps
// tests isolated from the process-wide default.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "countries_lookups_total",
			Help: "Country lookups by operation and outcome",
		}, []string{"operation", "outcome"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "countries_lookup_duration_seconds",
			Help:    "Duration of country lookups including the store round-trip",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		Misses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "countries_lookup_misses_total",
			Help: "Lookups that matched no country, by field",
		}, []string{"field"}),
		Cache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "countries_cache_requests_total",
			Help: "Read-through cache requests by operation and result",
		}, []string{"operation", "result"}),
	}
}

func (m *Metrics) ObserveLookup(operation, outcome string, start time.Time) {
	m.Lookups.WithLabelValues(operation, outcome).Inc()
	m.LookupDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementMiss(field string) {
	m.Misses.WithLabelValues(field).Inc()
}

func (m *Metrics) IncrementCache(operation, result string) {
	m.Cache.WithLabelValues(operation, result).Inc()
}
