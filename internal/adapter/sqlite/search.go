package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/hangarbay/registry-etl/internal/domain"
)

// OwnerMatch is one owner search hit.
type OwnerMatch struct {
	OwnerID       uint64
	NNumber       string
	OwnerNameStd  string
	AddressAllStd string
	CityStd       string
	StateStd      string
	Zip5          string
}

// Index is a read handle on a published owner search database.
type Index struct {
	db *sql.DB
}

// OpenIndex opens the database at path. A missing file is reported as
// domain.ErrMissingInput.
func OpenIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingInput, path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set query_only: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}

// SearchOwners returns up to limit owners whose standardized name, address,
// city, or state match every word of query, best match first.
func (x *Index) SearchOwners(ctx context.Context, query string, limit int) ([]OwnerMatch, error) {
	match := ftsQuery(query)
	if match == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx, `
		SELECT o.owner_id, o.n_number, o.owner_name_std, o.address_all_std, o.city_std, o.state_std, o.zip5
		FROM owners_fts
		JOIN owners o ON o.owner_id = owners_fts.rowid
		WHERE owners_fts MATCH ?
		ORDER BY owners_fts.rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("search owners: %w", err)
	}
	defer rows.Close()

	var out []OwnerMatch
	for rows.Next() {
		var m OwnerMatch
		var id int64
		if err := rows.Scan(&id, &m.NNumber, &m.OwnerNameStd, &m.AddressAllStd, &m.CityStd, &m.StateStd, &m.Zip5); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		m.OwnerID = uint64(id) //nolint:gosec // owner ids are stored bit-for-bit
		out = append(out, m)
	}
	return out, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression that ANDs every word as
// a quoted string, so punctuation in the input cannot form FTS5 syntax.
// Words without a letter or digit produce no tokens and are dropped.
func ftsQuery(query string) string {
	var terms []string
	for _, w := range strings.Fields(domain.CleanText(query)) {
		if strings.IndexFunc(w, isWordRune) < 0 {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Count returns the number of owners in the index.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return n, nil
}
