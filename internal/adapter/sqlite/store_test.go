package sqlite

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func owner(n, name, addr, city, state, zip string) domain.Owner {
	o := domain.Owner{
		NNumber:       n,
		OwnerNameStd:  name,
		AddressAllStd: addr,
		CityStd:       city,
		StateStd:      state,
		Zip5:          zip,
	}
	o.OwnerID = domain.OwnerIDOf(o)
	return o
}

func testRelations() *domain.Relations {
	boeing := owner("221LA", "BOEING CO", "100 MAIN ST SUITE 2", "SEATTLE", "WA", "98101")
	return &domain.Relations{
		MasterRelations: domain.MasterRelations{
			Owners: []domain.Owner{
				boeing,
				boeing, // identical facts share an owner_id
				owner("100", "SMITH JOHN A", "PO BOX 12", "AUSTIN", "TX", "78701"),
				owner("1000Z", "SKYWARD AVIATION LLC", "42 HANGAR RD", "MONTREAL", "QC", ""),
				owner("1001", "", "", "", "", ""),
			},
		},
	}
}

func publish(t *testing.T, path string, rel *domain.Relations) {
	t.Helper()
	require.NoError(t, NewStore(path, discardLogger()).Publish(context.Background(), rel))
}

func openIndex(t *testing.T, path string) *Index {
	t.Helper()
	idx, err := OpenIndex(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestStore_PublishAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	publish(t, path, testRelations())

	idx := openIndex(t, path)
	ctx := context.Background()

	hits, err := idx.SearchOwners(ctx, "boeing", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "221LA", hits[0].NNumber)
	assert.Equal(t, uint64(745841940274770564), hits[0].OwnerID)
	assert.Equal(t, "SEATTLE", hits[0].CityStd)

	hits, err = idx.SearchOwners(ctx, "Skyward  Montréal", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1000Z", hits[0].NNumber)

	hits, err = idx.SearchOwners(ctx, "tx", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "SMITH JOHN A", hits[0].OwnerNameStd)
}

func TestStore_DuplicateOwnerIDsStoredOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	publish(t, path, testRelations())

	count, err := openIndex(t, path).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestStore_HighBitOwnerIDRoundTrips(t *testing.T) {
	// 15353028623284545840 does not fit in int64.
	path := filepath.Join(t.TempDir(), FileName)
	rel := &domain.Relations{MasterRelations: domain.MasterRelations{
		Owners: []domain.Owner{owner("1001", "ACME AERO", "", "", "", "")},
	}}
	rel.Owners[0].OwnerID = 15353028623284545840
	publish(t, path, rel)

	hits, err := openIndex(t, path).SearchOwners(context.Background(), "acme", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uint64(15353028623284545840), hits[0].OwnerID)
}

func TestStore_RepublishReplacesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	publish(t, path, testRelations())

	next := &domain.Relations{MasterRelations: domain.MasterRelations{
		Owners: []domain.Owner{owner("9Z", "CIRRUS DESIGN CORP", "4515 TAYLOR CIR", "DULUTH", "MN", "55811")},
	}}
	publish(t, path, next)

	idx := openIndex(t, path)
	hits, err := idx.SearchOwners(context.Background(), "boeing", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.SearchOwners(context.Background(), "cirrus", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// No temporary databases are left next to the published one.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_RemoveDBLogsThroughStoreLogger(t *testing.T) {
	var buf bytes.Buffer
	s := NewStore(filepath.Join(t.TempDir(), "owners.sqlite"), slog.New(slog.NewTextHandler(&buf, nil)))

	// A non-empty directory cannot be removed.
	dir := filepath.Join(t.TempDir(), "stuck")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "child"), 0o755))
	s.removeDB(dir)

	assert.Contains(t, buf.String(), "remove temporary database failed")
	assert.Contains(t, buf.String(), "path="+dir)
	assert.DirExists(t, dir)

	buf.Reset()
	s.removeDB(filepath.Join(t.TempDir(), "absent.sqlite"))
	assert.Empty(t, buf.String())
}

func TestStore_Info(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	store := NewStore(path, discardLogger())
	assert.Equal(t, "sqlite", store.Name())
	assert.Zero(t, store.Info().SizeBytes)

	require.NoError(t, store.Publish(context.Background(), testRelations()))
	info := store.Info()
	assert.Equal(t, path, info.Target)
	assert.Positive(t, info.SizeBytes)
}

func TestSearchOwners_EdgeCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	publish(t, path, testRelations())
	idx := openIndex(t, path)
	ctx := context.Background()

	hits, err := idx.SearchOwners(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// FTS5 operators in the input are matched as words, not parsed.
	hits, err = idx.SearchOwners(ctx, "boeing OR smith", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.SearchOwners(ctx, "boeing", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestOpenIndex_Missing(t *testing.T) {
	_, err := OpenIndex(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"BOEING" "CO"`, ftsQuery(" boeing  co "))
	assert.Equal(t, `"A""B"`, ftsQuery(`a"b`))
	assert.Equal(t, `"SMITH" "JONES"`, ftsQuery("Smith & Jones"))
	assert.Empty(t, ftsQuery(""))
	assert.Empty(t, ftsQuery("- & ."))
}
