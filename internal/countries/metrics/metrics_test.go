package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLookup("get_by_capital", OutcomeFound, time.Now())
	m.ObserveLookup("get_by_capital", OutcomeNotFound, time.Now())
	m.ObserveLookup("get_by_capital", OutcomeNotFound, time.Now())
	m.IncrementMiss("capital")
	m.IncrementCache("find_all", CacheHit)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("get_by_capital", OutcomeFound)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lookups.WithLabelValues("get_by_capital", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues("capital")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cache.WithLabelValues("find_all", CacheHit)))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
