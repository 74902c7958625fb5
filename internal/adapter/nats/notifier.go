// Package nats announces published snapshots on a NATS subject.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/domain"
	natsgo "github.com/nats-io/nats.go"
)

const clientName = "hangarbay-etl"

// Notifier publishes one message per published snapshot.
// It implements pipeline.Notifier.
type Notifier struct {
	conn    *natsgo.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials the configured NATS server.
func Connect(cfg *config.Config, logger *slog.Logger) (*Notifier, error) {
	conn, err := natsgo.Connect(cfg.NATSURL,
		natsgo.Name(clientName),
		natsgo.Timeout(10*time.Second),
		natsgo.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Notifier{conn: conn, subject: cfg.NATSSubject, logger: logger}, nil
}

func (n *Notifier) Name() string { return "nats" }

// Notify publishes the notice and waits for the server to acknowledge it.
func (n *Notifier) Notify(ctx context.Context, event domain.SnapshotPublished) error {
	msg, err := newMessage(n.subject, event)
	if err != nil {
		return err
	}
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish snapshot notice: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush snapshot notice: %w", err)
	}
	n.logger.Debug("snapshot notice sent", "subject", n.subject, "snapshot", event.SnapshotDate)
	return nil
}

// Close drains pending messages and closes the connection.
func (n *Notifier) Close() error {
	return n.conn.Drain()
}

func newMessage(subject string, event domain.SnapshotPublished) (*natsgo.Msg, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot notice: %w", err)
	}
	msg := natsgo.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("event_type", "snapshot_published")
	msg.Header.Set("snapshot_date", event.SnapshotDate)
	return msg, nil
}
