//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	clickhousego "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/hangarbay/registry-etl/internal/adapter/clickhouse"
	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	clickhousetc "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

// startClickHouse runs a ClickHouse server and returns a config pointing
// at it.
func startClickHouse(ctx context.Context, t *testing.T) *config.Config {
	t.Helper()
	container, err := clickhousetc.Run(ctx, "clickhouse/clickhouse-server:24.8-alpine",
		clickhousetc.WithDatabase("hangarbay"),
		clickhousetc.WithUsername("etl"),
		clickhousetc.WithPassword("etl"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start clickhouse container")

	host, err := container.ConnectionHost(ctx)
	require.NoError(t, err)
	return &config.Config{
		ClickHouseAddr:     host,
		ClickHouseDatabase: "hangarbay",
		ClickHouseUser:     "etl",
		ClickHousePassword: "etl",
	}
}

func queryConn(t *testing.T, cfg *config.Config) driver.Conn {
	t.Helper()
	conn, err := clickhousego.Open(&clickhousego.Options{
		Addr: []string{cfg.ClickHouseAddr},
		Auth: clickhousego.Auth{
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// TestClickHouseStore_Publish publishes the fixtures twice: the first run
// renames the fresh tables into place, the second exchanges them.
func TestClickHouseStore_Publish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	cfg := startClickHouse(ctx, t)
	store, err := clickhouse.Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	dataDir := t.TempDir()
	writeSnapshot(t, dataDir, snapshotDate)
	publishFixtures(ctx, t, dataDir, store)
	publishFixtures(ctx, t, dataDir, store)

	conn := queryConn(t, cfg)
	count := func(query string) uint64 {
		t.Helper()
		var n uint64
		require.NoError(t, conn.QueryRow(ctx, query).Scan(&n), query)
		return n
	}

	want := map[string]uint64{
		domain.RelationAircraft:          4,
		domain.RelationRegistrations:     4,
		domain.RelationOwners:            4,
		domain.RelationAircraftMakeModel: 3,
		domain.RelationEngines:           3,
	}
	for table, n := range want {
		assert.Equal(t, n, count("SELECT count() FROM "+table), table)
	}
	assert.Equal(t, uint64(len(domain.StatusCodes)), count("SELECT count() FROM status_codes"))

	// One summary row per registration.
	assert.Equal(t, uint64(4), count("SELECT count() FROM owners_summary"))
	assert.Equal(t, uint64(1), count("SELECT toUInt64(owner_count) FROM owners_summary WHERE n_number = '221LA'"))

	assert.Zero(t, count("SELECT count() FROM system.tables WHERE database = 'hangarbay' AND endsWith(name, '_new')"))

	var regStatus string
	require.NoError(t, conn.QueryRow(ctx,
		"SELECT reg_status FROM aircraft_decoded WHERE n_number = '221LA'").Scan(&regStatus))
	assert.Equal(t, "Valid", regStatus)

	var statusDate *time.Time
	require.NoError(t, conn.QueryRow(ctx,
		"SELECT status_date FROM aircraft WHERE n_number = '221LA'").Scan(&statusDate))
	require.NotNil(t, statusDate)
	assert.Equal(t, "2023-01-15", statusDate.Format(time.DateOnly))

	var year *int32
	require.NoError(t, conn.QueryRow(ctx,
		"SELECT year_mfr FROM aircraft WHERE n_number = '1000Z'").Scan(&year))
	assert.Nil(t, year)

	var ownerID uint64
	require.NoError(t, conn.QueryRow(ctx,
		"SELECT owner_id FROM owners WHERE n_number = '1001'").Scan(&ownerID))
	assert.Equal(t, uint64(15353028623284545840), ownerID)
}
