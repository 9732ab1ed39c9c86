//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/rally-detour/internal/adapter/kafka"
	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/feedback"
	"github.com/couchcryptid/rally-detour/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeedbackTopic = "test-feedback"

func feedbackRecord(text string) domain.FeedbackRecord {
	return domain.FeedbackRecord{
		SavedAt:  time.Date(2025, time.August, 15, 9, 30, 0, 0, time.UTC),
		Date:     "2025-08-15",
		Start:    "10:00",
		End:      "12:00",
		Location: "광화문광장",
		Feedback: text,
	}
}

func readRecord(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (domain.FeedbackRecord, kafkago.Message) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from feedback topic")

	var rec domain.FeedbackRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec))
	return rec, msg
}

// TestFeedbackEvents stores feedback through the CSV log and checks that only
// newly stored records reach the topic.
func TestFeedbackEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFeedbackTopic)

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter([]string{broker}, testFeedbackTopic, metrics, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	store := feedback.NewStore(filepath.Join(t.TempDir(), "feedback.csv"), discardLogger(), feedback.WithPublisher(writer))

	first, err := store.Append(ctx, feedbackRecord("우회 안내가 늦었어요"))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	dup, err := store.Append(ctx, feedbackRecord("우회 안내가 늦었어요"))
	require.NoError(t, err)
	require.True(t, dup.Duplicate)

	second, err := store.Append(ctx, feedbackRecord("정류장 위치 안내 감사합니다"))
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testFeedbackTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, msg := readRecord(ctx, t, consumer)
	assert.Equal(t, first.Record.DupeKey, string(msg.Key))
	assert.Equal(t, first.Record.Feedback, got.Feedback)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2025-08-15", headers["event_date"])
	assert.Equal(t, "2025-08-15T09:30:00Z", headers["saved_at"])

	// The duplicate was never published, so the next event is the second record.
	got, msg = readRecord(ctx, t, consumer)
	assert.Equal(t, second.Record.DupeKey, string(msg.Key))
	assert.Equal(t, "정류장 위치 안내 감사합니다", got.Feedback)

	logged, err := store.All()
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}
