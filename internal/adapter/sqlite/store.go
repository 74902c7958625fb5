// Package sqlite builds the owner search database: an owners table with an
// FTS5 index over the standardized name and address fields.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hangarbay/registry-etl/internal/domain"
	_ "modernc.org/sqlite"
)

// FileName is the owner search database inside the publish directory.
const FileName = "owners.sqlite"

const schema = `
	CREATE TABLE owners (
		owner_id        INTEGER PRIMARY KEY,
		n_number        TEXT NOT NULL,
		owner_name_std  TEXT,
		address_all_std TEXT,
		city_std        TEXT,
		state_std       TEXT,
		zip5            TEXT
	);
`

const ftsSchema = `
	CREATE VIRTUAL TABLE owners_fts USING fts5(
		owner_name_std,
		address_all_std,
		city_std,
		state_std,
		content='owners',
		content_rowid='owner_id'
	);

	INSERT INTO owners_fts(owners_fts) VALUES('rebuild');

	CREATE INDEX idx_owners_n_number ON owners(n_number);
	CREATE INDEX idx_owners_state ON owners(state_std);
`

// Store publishes owners to a SQLite FTS5 database.
// It implements pipeline.Publisher.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store that writes to path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

func (s *Store) Name() string { return "sqlite" }

// Info reports the database path and size.
func (s *Store) Info() domain.StoreInfo {
	info := domain.StoreInfo{Target: s.path}
	if st, err := os.Stat(s.path); err == nil {
		info.SizeBytes = st.Size()
	}
	return info
}

// Publish rebuilds the database from rel.Owners in a temporary file and
// renames it over the previous one. Owners sharing an owner_id describe the
// same facts and are stored once.
func (s *Store) Publish(ctx context.Context, rel *domain.Relations) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	tmp := fmt.Sprintf("%s.tmp-%s", s.path, uuid.NewString())
	defer s.removeDB(tmp)

	inserted, err := build(ctx, tmp, rel.Owners)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("install %s: %w", s.path, err)
	}

	s.logger.Info("owner search index built",
		"path", s.path,
		"owners", len(rel.Owners),
		"distinct_owner_ids", inserted,
	)
	return nil
}

func build(ctx context.Context, path string, owners []domain.Owner) (int64, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return 0, fmt.Errorf("create schema: %w", err)
	}

	inserted, err := insertOwners(ctx, db, owners)
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, ftsSchema); err != nil {
		return 0, fmt.Errorf("create fts index: %w", err)
	}
	if err := db.Close(); err != nil {
		return 0, fmt.Errorf("close database: %w", err)
	}
	return inserted, nil
}

func insertOwners(ctx context.Context, db *sql.DB, owners []domain.Owner) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO owners (owner_id, n_number, owner_name_std, address_all_std, city_std, state_std, zip5)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i := range owners {
		o := &owners[i]
		res, err := stmt.ExecContext(ctx, int64(o.OwnerID), o.NNumber, o.OwnerNameStd, o.AddressAllStd, o.CityStd, o.StateStd, o.Zip5) //nolint:gosec // owner ids are stored bit-for-bit
		if err != nil {
			return 0, fmt.Errorf("insert owner %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert owner %d: %w", i, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// removeDB deletes a database file and its journal side files.
func (s *Store) removeDB(path string) {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("remove temporary database failed", "path", p, "error", err)
		}
	}
}
