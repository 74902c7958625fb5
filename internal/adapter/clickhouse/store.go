// Package clickhouse publishes the normalized relations to a ClickHouse
// database for analytical queries.
package clickhouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/domain"
)

const (
	connectAttempts   = 5
	connectBackoff    = 500 * time.Millisecond
	connectMaxBackoff = 10 * time.Second
)

// Store loads relations into ClickHouse MergeTree tables.
// It implements pipeline.Publisher.
type Store struct {
	conn     driver.Conn
	addr     string
	database string
	logger   *slog.Logger
}

// Open connects to the configured ClickHouse server, retrying with
// exponential backoff while the server is unreachable.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.ClickHouseAddr},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 300,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	backoff := connectBackoff
	for attempt := 1; ; attempt++ {
		err = conn.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = conn.Close()
			return nil, fmt.Errorf("ping clickhouse: %w", err)
		}
		logger.Warn("clickhouse not reachable, retrying",
			"addr", cfg.ClickHouseAddr, "attempt", attempt, "backoff", backoff, "error", err)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			_ = conn.Close()
			return nil, fmt.Errorf("ping clickhouse: %w", ctx.Err())
		}
		backoff = sharedretry.NextBackoff(backoff, connectMaxBackoff)
	}

	return &Store{
		conn:     conn,
		addr:     cfg.ClickHouseAddr,
		database: cfg.ClickHouseDatabase,
		logger:   logger,
	}, nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Name() string { return "clickhouse" }

// Info reports the server and database. Credentials are never included.
func (s *Store) Info() domain.StoreInfo {
	return domain.StoreInfo{Target: target(s.addr, s.database)}
}

func target(addr, database string) string {
	return fmt.Sprintf("clickhouse://%s/%s", addr, database)
}

// Publish rebuilds every relation table, the decode tables, and
// owners_summary, then (re)creates the decoded views. Each table is loaded
// under a _new name and exchanged with the live one, so readers never see a
// partially loaded table.
func (s *Store) Publish(ctx context.Context, rel *domain.Relations) error {
	tables, err := domain.CastAll(rel)
	if err != nil {
		return err
	}

	for _, c := range domain.Contracts {
		t := tables[c.Relation]
		err := s.replace(ctx, c.Relation, func(tmp string) error {
			if err := s.conn.Exec(ctx, createTableSQL(c, tmp)); err != nil {
				return err
			}
			return s.load(ctx, insertSQL(c, tmp), t)
		})
		if err != nil {
			return err
		}
		s.logger.Debug("clickhouse table loaded", "table", c.Relation, "rows", t.NumRows)
	}

	for _, ct := range domain.CodeTables {
		err := s.replace(ctx, ct.Name, func(tmp string) error {
			if err := s.conn.Exec(ctx, fmt.Sprintf(createCodeTableSQL, tmp)); err != nil {
				return err
			}
			return s.loadCodes(ctx, tmp, ct.Codes)
		})
		if err != nil {
			return err
		}
	}

	err = s.replace(ctx, "owners_summary", func(tmp string) error {
		return s.conn.Exec(ctx, ownersSummarySQL(tmp))
	})
	if err != nil {
		return err
	}

	for _, v := range views {
		if err := s.conn.Exec(ctx, v); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}

	s.logger.Info("clickhouse publish complete", "target", target(s.addr, s.database))
	return nil
}

// replace builds name under a temporary table and swaps it in.
func (s *Store) replace(ctx context.Context, name string, build func(tmp string) error) error {
	tmp := name + "_new"
	if err := s.conn.Exec(ctx, "DROP TABLE IF EXISTS "+tmp); err != nil {
		return fmt.Errorf("drop %s: %w", tmp, err)
	}
	if err := build(tmp); err != nil {
		return fmt.Errorf("build %s: %w", name, err)
	}

	var exists uint8
	if err := s.conn.QueryRow(ctx, "EXISTS TABLE "+name).Scan(&exists); err != nil {
		return fmt.Errorf("check %s: %w", name, err)
	}
	if exists == 0 {
		if err := s.conn.Exec(ctx, fmt.Sprintf("RENAME TABLE %s TO %s", tmp, name)); err != nil {
			return fmt.Errorf("rename %s: %w", tmp, err)
		}
		return nil
	}

	if err := s.conn.Exec(ctx, fmt.Sprintf("EXCHANGE TABLES %s AND %s", tmp, name)); err != nil {
		return fmt.Errorf("exchange %s: %w", name, err)
	}
	if err := s.conn.Exec(ctx, "DROP TABLE IF EXISTS "+tmp); err != nil {
		return fmt.Errorf("drop previous %s: %w", name, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, query string, t *domain.Table) error {
	if t.NumRows == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for i := 0; i < t.NumRows; i++ {
		if err := batch.Append(rowValues(t.Row(i))...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append row %d: %w", i, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func (s *Store) loadCodes(ctx context.Context, table string, codes []domain.Code) error {
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (code, description)", table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, c := range codes {
		if err := batch.Append(c.Code, c.Description); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append code %s: %w", c.Code, err)
		}
	}
	return batch.Send()
}

// rowValues converts dates to the driver's Date32 representation.
func rowValues(row []any) []any {
	for i, v := range row {
		if d, ok := v.(*domain.Date); ok {
			if d == nil {
				row[i] = (*time.Time)(nil)
				continue
			}
			t := d.Time()
			row[i] = &t
		}
	}
	return row
}
