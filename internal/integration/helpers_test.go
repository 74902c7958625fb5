//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hangarbay/registry-etl/internal/adapter/sqlite"
	"github.com/hangarbay/registry-etl/internal/observability"
	"github.com/hangarbay/registry-etl/internal/pipeline"
	"github.com/stretchr/testify/require"
)

const snapshotDate = "2025-01-15"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSnapshot(t *testing.T, dataDir, date string) {
	t.Helper()
	dir := filepath.Join(dataDir, "raw", date)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"MASTER.txt", "ACFTREF.txt", "ENGINE.txt"} {
		data, err := os.ReadFile(filepath.Join("..", "domain", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	manifest := fmt.Sprintf(`{"snapshot_date": %q, "files": {}, "schema_hashes": {}}`, date)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0o644))
}

// publishFixtures runs both stages over the domain fixtures, publishing to
// the SQLite index and the given store.
func publishFixtures(ctx context.Context, t *testing.T, dataDir string, store pipeline.Publisher) {
	t.Helper()
	index := sqlite.NewStore(filepath.Join(pipeline.PublishDir(dataDir), sqlite.FileName), discardLogger())
	p := pipeline.New(pipeline.Options{DataDir: dataDir},
		[]pipeline.Publisher{index, store}, nil, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, p.Run(ctx))
}
