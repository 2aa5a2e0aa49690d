package kafka_middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"countries/pkg/kafka"
)

type ProducerMetrics struct {
	published *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewProducerMetrics(reg prometheus.Registerer) *ProducerMetrics {
	factory := promauto.With(reg)
	return &ProducerMetrics{
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_total",
			Help: "Messages handed to the Kafka producer, by topic and outcome.",
		}, []string{"topic", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Time spent publishing a single message.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

func (m *ProducerMetrics) Middleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.duration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

		outcome := "success"
		if err != nil {
			outcome = kafka.ClassifyError(err).String()
		}
		m.published.WithLabelValues(msg.Topic, outcome).Inc()
		return err
	}
}
