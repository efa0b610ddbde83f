// Package kafka publishes per-day kite-window digests so downstream consumers
// (alerting, session planners) do not need to poll the forecast API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/inletlabs/kitecast/internal/domain"
)

// Writer produces kite-window digest messages to a Kafka topic.
// It implements pipeline.DigestPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the digest topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishWindows serializes and publishes one message per forecast day in a
// single WriteMessages call. The message key is the local calendar date, so a
// compacted topic retains only the latest digest per day.
func (w *Writer) PublishWindows(ctx context.Context, windows []domain.KiteWindow) error {
	if len(windows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(windows))
	for i := range windows {
		msg, err := serializeToMessage(windows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a KiteWindow into a Kafka message.
func serializeToMessage(window domain.KiteWindow) (kafkago.Message, error) {
	data, err := json.Marshal(window)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize kite window: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(window.Date.Format("2006-01-02")),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "session_found", Value: []byte(strconv.FormatBool(window.Found))},
			{Key: "storm", Value: []byte(strconv.FormatBool(window.Storm))},
		},
	}, nil
}
