// Package kafka announces published snapshots on a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// EventType is the event_type header of every notice.
const EventType = "snapshot_published"

// Notifier produces one message per published snapshot.
// It implements pipeline.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

func (n *Notifier) Name() string { return "kafka" }

// Notify writes the notice keyed by snapshot date, so every notice for a
// snapshot lands on the same partition.
func (n *Notifier) Notify(ctx context.Context, event domain.SnapshotPublished) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot notice: %w", err)
	}
	n.logger.Debug("snapshot notice sent", "topic", n.writer.Topic, "snapshot", event.SnapshotDate)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a SnapshotPublished into a Kafka message.
func serializeToMessage(event domain.SnapshotPublished) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot notice: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.SnapshotDate),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventType)},
			{Key: "published_at", Value: []byte(event.PublishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
