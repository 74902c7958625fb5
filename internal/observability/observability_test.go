package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		quiet    bool
		expected string
	}{
		{"info passes through", "info", false, "info"},
		{"debug passes through", "debug", false, "debug"},
		{"quiet clamps info", "info", true, "warn"},
		{"quiet clamps debug", "debug", true, "warn"},
		{"quiet keeps error", "error", true, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LogLevel: tt.level, Quiet: tt.quiet}
			assert.Equal(t, tt.expected, EffectiveLevel(cfg))
		})
	}
}

func TestNewLogger_QuietDropsInfo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	loud := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	assert.True(t, loud.Enabled(ctx, slog.LevelDebug))

	quiet := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text", Quiet: true})
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))
	// Loggers derived for stages and stores share the clamp.
	assert.False(t, quiet.With("stage", "normalize").Enabled(ctx, slog.LevelInfo))
	assert.Same(t, quiet, slog.Default())
}

func TestMetricsForTesting_Registrable(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.RowsParsed))
	require.NoError(t, reg.Register(m.LastSuccess))

	m.RowsParsed.WithLabelValues("owners").Add(3)
	assert.InDelta(t, 3, testutil.ToFloat64(m.RowsParsed.WithLabelValues("owners")), 0)
}
