package events

import (
	"context"
	"time"

	"countries/pkg/kafka"
	"countries/pkg/logger"
	"countries/pkg/model"
	"countries/pkg/sanitizer"
)

const (
	EventTypeLookupMissed = "country.lookup.missed"
	schemaVersion         = "1"
	source                = "countries"
)

// LookupMissed is the payload published when a lookup matches no country.
type LookupMissed struct {
	Field           string    `json:"field"`
	Value           string    `json:"value"`
	NormalizedValue string    `json:"normalized_value"`
	RequestID       string    `json:"request_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaMissRecorder publishes lookup misses in the background. Failures are
// logged and never reach the lookup caller.
type KafkaMissRecorder struct {
	producer  publisher
	timeout   time.Duration
	requestID func(context.Context) string
	log       *logger.Logger
}

func NewKafkaMissRecorder(producer *kafka.Producer, timeout time.Duration, requestID func(context.Context) string, log *logger.Logger) *KafkaMissRecorder {
	return newKafkaMissRecorder(producer, timeout, requestID, log)
}

func newKafkaMissRecorder(p publisher, timeout time.Duration, requestID func(context.Context) string, log *logger.Logger) *KafkaMissRecorder {
	if requestID == nil {
		requestID = func(context.Context) string { return "" }
	}
	return &KafkaMissRecorder{
		producer:  p,
		timeout:   timeout,
		requestID: requestID,
		log:       log,
	}
}

func (r *KafkaMissRecorder) RecordMiss(ctx context.Context, field model.LookupField, value string) {
	reqID := r.requestID(ctx)
	evt := LookupMissed{
		Field:           field.String(),
		Value:           value,
		NormalizedValue: sanitizer.Normalize(value),
		RequestID:       reqID,
		OccurredAt:      time.Now().UTC(),
	}

	msg, err := kafka.NewMessage().
		WithKey(evt.Field + ":" + evt.NormalizedValue).
		WithEventType(EventTypeLookupMissed).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		WithCorrelationID(reqID).
		WithValue(evt).
		Build()
	if err != nil {
		r.log.Error("Failed to build lookup miss event", "field", evt.Field, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	go func() {
		defer cancel()
		if err := r.producer.Publish(pubCtx, msg); err != nil {
			r.log.Warn("Failed to publish lookup miss event",
				"field", evt.Field,
				"value", evt.Value,
				"request_id", reqID,
				"error", err,
			)
		}
	}()
}
