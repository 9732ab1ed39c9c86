// Package kafka publishes stored feedback records as events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces feedback events to a Kafka topic.
// It implements feedback.Publisher.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the feedback topic.
func NewWriter(brokers []string, topic string, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger.With("component", "feedback_writer")}
}

// Publish serializes rec and writes it keyed by its dupe key, so repeated
// submissions of the same feedback land on the same partition.
func (w *Writer) Publish(ctx context.Context, rec domain.FeedbackRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		w.metrics.FeedbackEvents.WithLabelValues("error").Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.FeedbackEvents.WithLabelValues("error").Inc()
		return fmt.Errorf("write feedback event: %w", err)
	}
	w.metrics.FeedbackEvents.WithLabelValues("success").Inc()
	w.logger.Debug("feedback event published", "dupe_key", rec.DupeKey)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FeedbackRecord into a Kafka message.
func serializeToMessage(rec domain.FeedbackRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feedback record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.DupeKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_date", Value: []byte(rec.Date)},
			{Key: "saved_at", Value: []byte(rec.SavedAt.Format(time.RFC3339))},
		},
	}, nil
}
