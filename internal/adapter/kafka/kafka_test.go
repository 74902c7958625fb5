package kafka

import (
	"testing"
	"time"

	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)
	event := domain.SnapshotPublished{
		SnapshotDate: "2025-01-15",
		PublishedAt:  now,
		RowCounts:    map[string]int{"aircraft": 3},
		Stores:       []string{"sqlite"},
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("2025-01-15"), msg.Key)
	assert.JSONEq(t, `{
		"snapshot_date": "2025-01-15",
		"published_at": "2025-01-15T07:00:00Z",
		"row_counts": {"aircraft": 3},
		"stores": ["sqlite"]
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(EventType), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_PublishedAtInUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	event := domain.SnapshotPublished{
		SnapshotDate: "2025-01-15",
		PublishedAt:  time.Date(2025, 1, 15, 2, 0, 0, 0, est),
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)
	assert.Equal(t, []byte("2025-01-15T07:00:00Z"), msg.Headers[1].Value)
}

func TestNewNotifier(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "registry-snapshots"}
	n := NewNotifier(cfg, nil)
	t.Cleanup(func() { _ = n.Close() })

	assert.Equal(t, "kafka", n.Name())
	assert.Equal(t, "registry-snapshots", n.writer.Topic)
}
