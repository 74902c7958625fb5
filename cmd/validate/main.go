// Command validate checks a published registry snapshot for integrity: the
// Parquet files against normalize.json and the schema contracts, the
// cardinality of the master relations, owner identity, and the owner search
// index.
//
// Usage:
//
//	go run ./cmd/validate -data-dir ~/.hangarbay/data
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/hangarbay/registry-etl/internal/adapter/parquet"
	"github.com/hangarbay/registry-etl/internal/adapter/sqlite"
	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/hangarbay/registry-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", sharedcfg.EnvOrDefault("HANGARBAY_DATA_DIR", ""), "hangarbay data root (contains publish/)")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(context.Background(), *dataDir, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, dataDir string, out io.Writer) int {
	publishDir := pipeline.PublishDir(dataDir)

	fmt.Fprintln(out, "=== Registry Snapshot Validation ===")
	fmt.Fprintln(out)

	norm, err := parquet.ReadNormalizeMetadata(publishDir)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	files, err := inspectAll(publishDir)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	rel, err := parquet.ReadSet(publishDir)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowCounts(files, norm),
		validateColumns(files),
		validateCardinality(files),
		validateOwnerIdentity(rel),
		validateSearchIndex(ctx, filepath.Join(publishDir, sqlite.FileName), rel),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Snapshot %s: %d aircraft, %d owners, %d make/models, %d engines\n",
		norm.SnapshotDate, len(rel.Aircraft), len(rel.Owners), len(rel.AircraftMakeModel), len(rel.Engines))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func inspectAll(publishDir string) (map[string]*parquet.FileInfo, error) {
	files := make(map[string]*parquet.FileInfo, len(domain.RelationNames))
	for _, name := range domain.RelationNames {
		info, err := parquet.Inspect(publishDir, name)
		if err != nil {
			return nil, err
		}
		files[name] = info
	}
	return files, nil
}

// ── Phase 1: Row counts ──

func validateRowCounts(files map[string]*parquet.FileInfo, norm *domain.NormalizeMetadata) *phase {
	p := &phase{name: "Phase 1: Row counts (Parquet vs metadata)"}
	for _, name := range domain.RelationNames {
		want, ok := norm.RowCounts[name]
		if !ok {
			p.errorf("%s: missing from normalize.json row_counts", name)
			continue
		}
		if got := files[name].NumRows; got != int64(want) {
			p.errorf("%s: normalize.json says %d rows, file has %d", name, want, got)
		}
	}
	return p
}

// ── Phase 2: Columns ──

func validateColumns(files map[string]*parquet.FileInfo) *phase {
	p := &phase{name: "Phase 2: Columns (Parquet vs contracts)"}
	for _, c := range domain.Contracts {
		info := files[c.Relation]
		if want := c.Names(); !slices.Equal(info.Columns, want) {
			p.errorf("%s: columns %v, want %v", c.Relation, info.Columns, want)
			continue
		}
		want := parquet.ContractTypes(c)
		for i, col := range info.Columns {
			if info.Types[i] != want[i] {
				p.errorf("%s.%s: type %s, want %s", c.Relation, col, info.Types[i], want[i])
			}
		}
	}
	return p
}

// ── Phase 3: Cardinality ──
// Every MASTER record yields exactly one aircraft, registration, and owner.

func validateCardinality(files map[string]*parquet.FileInfo) *phase {
	p := &phase{name: "Phase 3: Cardinality (master relations)"}
	aircraft := files[domain.RelationAircraft].NumRows
	if n := files[domain.RelationRegistrations].NumRows; n != aircraft {
		p.errorf("registrations: %d rows, aircraft: %d", n, aircraft)
	}
	if n := files[domain.RelationOwners].NumRows; n != aircraft {
		p.errorf("owners: %d rows, aircraft: %d", n, aircraft)
	}
	return p
}

// ── Phase 4: Owner identity ──

func validateOwnerIdentity(rel *domain.Relations) *phase {
	p := &phase{name: "Phase 4: Owner identity (owner_id)"}
	for i := range rel.Owners {
		o := rel.Owners[i]
		if want := domain.OwnerIDOf(o); o.OwnerID != want {
			p.errorf("owner row %d (N%s): owner_id %d, recomputed %d", i, o.NNumber, o.OwnerID, want)
		}
	}
	return p
}

// ── Phase 5: Owner search index ──

const searchSample = 100

func validateSearchIndex(ctx context.Context, path string, rel *domain.Relations) *phase {
	p := &phase{name: "Phase 5: Owner search index (SQLite)"}

	idx, err := sqlite.OpenIndex(path)
	if errors.Is(err, domain.ErrMissingInput) {
		// The index only exists after a publish.
		return p
	}
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer idx.Close()

	distinct := make(map[uint64]domain.Owner, len(rel.Owners))
	for _, o := range rel.Owners {
		distinct[o.OwnerID] = o
	}

	n, err := idx.Count(ctx)
	if err != nil {
		p.errorf("count: %v", err)
		return p
	}
	if n != len(distinct) {
		p.errorf("index has %d owners, Parquet has %d distinct owner ids", n, len(distinct))
	}

	// A sample of named owners must be findable by their own names.
	checked := 0
	for _, o := range rel.Owners {
		if o.OwnerNameStd == "" {
			continue
		}
		if checked == searchSample {
			break
		}
		checked++
		hits, err := idx.SearchOwners(ctx, o.OwnerNameStd, len(distinct))
		if err != nil {
			p.errorf("search %q: %v", o.OwnerNameStd, err)
			return p
		}
		if !slices.ContainsFunc(hits, func(m sqlite.OwnerMatch) bool { return m.OwnerID == o.OwnerID }) {
			p.errorf("owner %d (%s) not found by name", o.OwnerID, o.OwnerNameStd)
		}
	}
	return p
}
