package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/hangarbay/registry-etl/internal/config"
)

// NewLogger builds the process logger from config and installs it as the
// slog default. Quiet runs only log warnings and errors.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(EffectiveLevel(cfg), cfg.LogFormat)
}

// EffectiveLevel returns the configured level, raised to "warn" when quiet.
func EffectiveLevel(cfg *config.Config) string {
	if !cfg.Quiet {
		return cfg.LogLevel
	}
	switch cfg.LogLevel {
	case "error":
		return "error"
	default:
		return "warn"
	}
}
