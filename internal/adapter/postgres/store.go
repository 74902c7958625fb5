// Package postgres publishes the normalized relations to PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectAttempts   = 5
	connectBackoff    = 500 * time.Millisecond
	connectMaxBackoff = 10 * time.Second
)

// Store replaces the relation tables of a PostgreSQL database in a single
// transaction. It implements pipeline.Publisher.
type Store struct {
	pool   *pgxpool.Pool
	target string
	logger *slog.Logger
}

// Open connects to databaseURL, retrying with exponential backoff while the
// server is unreachable.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	backoff := connectBackoff
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Warn("postgres not reachable, retrying",
			"target", redact(databaseURL), "attempt", attempt, "backoff", backoff, "error", err)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", ctx.Err())
		}
		backoff = sharedretry.NextBackoff(backoff, connectMaxBackoff)
	}

	return &Store{pool: pool, target: redact(databaseURL), logger: logger}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Name() string { return "postgres" }

// Info reports the server and database without credentials.
func (s *Store) Info() domain.StoreInfo {
	return domain.StoreInfo{Target: s.target}
}

// Publish truncates and reloads every table with COPY, refreshes
// owners_summary, and (re)creates the decoded views. Readers see either the
// previous snapshot or the new one.
func (s *Store) Publish(ctx context.Context, rel *domain.Relations) error {
	tables, err := domain.CastAll(rel)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := createSchema(ctx, tx); err != nil {
		return err
	}

	names := make([]string, 0, len(domain.Contracts)+len(domain.CodeTables))
	for _, c := range domain.Contracts {
		names = append(names, c.Relation)
	}
	for _, ct := range domain.CodeTables {
		names = append(names, ct.Name)
	}
	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(names, ", ")); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for _, c := range domain.Contracts {
		t := tables[c.Relation]
		n, err := tx.CopyFrom(ctx, pgx.Identifier{c.Relation}, c.Names(),
			pgx.CopyFromSlice(t.NumRows, func(i int) ([]any, error) {
				return rowValues(t.Row(i)), nil
			}))
		if err != nil {
			return fmt.Errorf("copy %s: %w", c.Relation, err)
		}
		s.logger.Debug("postgres table loaded", "table", c.Relation, "rows", n)
	}

	for _, ct := range domain.CodeTables {
		codes := ct.Codes
		_, err := tx.CopyFrom(ctx, pgx.Identifier{ct.Name}, []string{"code", "description"},
			pgx.CopyFromSlice(len(codes), func(i int) ([]any, error) {
				return []any{codes[i].Code, codes[i].Description}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy %s: %w", ct.Name, err)
		}
	}

	for _, q := range indexes {
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, ownersSummarySQL()); err != nil {
		return fmt.Errorf("create owners_summary: %w", err)
	}
	if _, err := tx.Exec(ctx, "REFRESH MATERIALIZED VIEW owners_summary"); err != nil {
		return fmt.Errorf("refresh owners_summary: %w", err)
	}
	for _, v := range views {
		if _, err := tx.Exec(ctx, v); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("postgres publish complete", "target", s.target)
	return nil
}

func createSchema(ctx context.Context, tx pgx.Tx) error {
	for _, c := range domain.Contracts {
		if _, err := tx.Exec(ctx, createTableSQL(c)); err != nil {
			return fmt.Errorf("create %s: %w", c.Relation, err)
		}
	}
	for _, ct := range domain.CodeTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf(createCodeTableSQL, ct.Name)); err != nil {
			return fmt.Errorf("create %s: %w", ct.Name, err)
		}
	}
	return nil
}

// rowValues maps contract values onto types pgx encodes directly.
func rowValues(row []any) []any {
	for i, v := range row {
		switch x := v.(type) {
		case *domain.Date:
			if x == nil {
				row[i] = nil
				continue
			}
			row[i] = x.Time()
		case uint64:
			row[i] = int64(x) //nolint:gosec // owner ids are stored bit-for-bit
		}
	}
	return row
}

// redact strips credentials and query parameters from a connection URL.
func redact(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil || u.Host == "" {
		return "postgres"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
