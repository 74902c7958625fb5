// Package parquet writes and reads the published relation set: one Parquet
// file per relation plus JSON metadata under _meta/.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hangarbay/registry-etl/internal/domain"
	pq "github.com/parquet-go/parquet-go"
)

// MetaDir holds stage metadata inside the publish directory.
const MetaDir = "_meta"

// Metadata file names under MetaDir.
const (
	NormalizeMetaFile = "normalize.json"
	PublishMetaFile   = "publish.json"
	MetadataFile      = "metadata.json"
)

// FileName returns the Parquet file name of a relation.
func FileName(relation string) string { return relation + ".parquet" }

// Writer writes a relation set into a publish directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for publishDir.
func NewWriter(publishDir string, logger *slog.Logger) *Writer {
	return &Writer{dir: publishDir, logger: logger}
}

// Dir returns the publish directory.
func (w *Writer) Dir() string { return w.dir }

// WriteSet casts all five relations to their contracts and writes them with
// normalize.json to a staging directory, then swaps them into the publish
// directory. Either the whole set is replaced or the previous set is left as
// it was.
func (w *Writer) WriteSet(ctx context.Context, rel *domain.Relations, meta domain.NormalizeMetadata) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create publish dir: %w", err)
	}

	staging := filepath.Join(w.dir, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(staging, MetaDir), 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			w.logger.Warn("remove staging dir failed", "dir", staging, "error", rmErr)
		}
	}()

	tables, err := domain.CastAll(rel)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(domain.Contracts)+1)
	for _, c := range domain.Contracts {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := FileName(c.Relation)
		if err := writeTable(filepath.Join(staging, name), tables[c.Relation]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		w.logger.Debug("staged relation", "relation", c.Relation, "file", name, "rows", tables[c.Relation].NumRows)
		names = append(names, name)
	}

	metaName := filepath.Join(MetaDir, NormalizeMetaFile)
	if err := writeJSONFile(filepath.Join(staging, metaName), meta); err != nil {
		return fmt.Errorf("write %s: %w", metaName, err)
	}
	names = append(names, metaName)

	if err := ctx.Err(); err != nil {
		return err
	}
	return w.swap(staging, names)
}

// swap moves the staged files over the live ones. Live files are first moved
// aside so a failed rename can restore them.
func (w *Writer) swap(staging string, names []string) error {
	if err := os.MkdirAll(filepath.Join(w.dir, MetaDir), 0o755); err != nil {
		return fmt.Errorf("create meta dir: %w", err)
	}

	backup := filepath.Join(w.dir, ".backup-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(backup, MetaDir), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	defer os.RemoveAll(backup) //nolint:errcheck // best-effort cleanup

	var backedUp, installed []string
	restore := func() {
		for _, name := range installed {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
		for _, name := range backedUp {
			if err := os.Rename(filepath.Join(backup, name), filepath.Join(w.dir, name)); err != nil {
				w.logger.Error("restore previous publish file failed", "file", name, "error", err)
			}
		}
	}

	for _, name := range names {
		err := os.Rename(filepath.Join(w.dir, name), filepath.Join(backup, name))
		switch {
		case err == nil:
			backedUp = append(backedUp, name)
		case errors.Is(err, fs.ErrNotExist):
		default:
			restore()
			return fmt.Errorf("move aside %s: %w", name, err)
		}
	}

	for _, name := range names {
		if err := os.Rename(filepath.Join(staging, name), filepath.Join(w.dir, name)); err != nil {
			restore()
			return fmt.Errorf("install %s: %w", name, err)
		}
		installed = append(installed, name)
	}
	return nil
}

// rowBatch bounds the rows buffered per WriteRows call.
const rowBatch = 4096

// writeTable writes a cast table with its contract schema.
func writeTable(path string, t *domain.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	pw := pq.NewWriter(f, Schema(t.Contract), pq.Compression(&pq.Snappy))
	rows := make([]pq.Row, 0, min(t.NumRows, rowBatch))
	for i := 0; i < t.NumRows; i++ {
		rows = append(rows, encodeRow(t, i))
		if len(rows) == rowBatch {
			if _, err := pw.WriteRows(rows); err != nil {
				return err
			}
			rows = make([]pq.Row, 0, rowBatch)
		}
	}
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return err
		}
	}
	return pw.Close()
}
