package parquet

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hangarbay/registry-etl/internal/domain"
	pq "github.com/parquet-go/parquet-go"
)

// ReadSet reads the five published relations back from publishDir. Every
// file must carry its contract's columns and types.
func ReadSet(publishDir string) (*domain.Relations, error) {
	var rel domain.Relations
	var err error

	if rel.Aircraft, err = readRelation(publishDir, domain.AircraftContract, decodeAircraft); err != nil {
		return nil, err
	}
	if rel.Registrations, err = readRelation(publishDir, domain.RegistrationContract, decodeRegistration); err != nil {
		return nil, err
	}
	if rel.Owners, err = readRelation(publishDir, domain.OwnerContract, decodeOwner); err != nil {
		return nil, err
	}
	if rel.AircraftMakeModel, err = readRelation(publishDir, domain.AircraftMakeModelContract, decodeMakeModel); err != nil {
		return nil, err
	}
	if rel.Engines, err = readRelation(publishDir, domain.EngineContract, decodeEngine); err != nil {
		return nil, err
	}
	return &rel, nil
}

// FileInfo summarizes a Parquet file without decoding its rows.
type FileInfo struct {
	NumRows int64
	Columns []string
	Types   []string // see ColumnType
}

// Inspect reads the row count and top-level columns of a relation file.
func Inspect(publishDir, relation string) (*FileInfo, error) {
	pf, closeFile, err := openFile(publishDir, relation)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	fields := pf.Schema().Fields()
	info := &FileInfo{
		NumRows: pf.NumRows(),
		Columns: make([]string, len(fields)),
		Types:   make([]string, len(fields)),
	}
	for i, f := range fields {
		info.Columns[i] = f.Name()
		info.Types[i] = ColumnType(f)
	}
	return info, nil
}

func openFile(publishDir, relation string) (*pq.File, func(), error) {
	path := filepath.Join(publishDir, FileName(relation))
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrMissingInput, path)
	}
	if err != nil {
		return nil, nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	pf, err := pq.OpenFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return pf, func() { f.Close() }, nil
}

// columnIndex maps contract column names to their position in the file,
// failing when a column is missing or has another type.
func columnIndex(s *pq.Schema, c domain.Contract) (map[string]int, error) {
	fields := s.Fields()
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		byName[f.Name()] = i
	}

	want := ContractTypes(c)
	index := make(map[string]int, len(c.Columns))
	for i, col := range c.Columns {
		pos, ok := byName[col.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", domain.ErrMissingColumn, c.Relation, col.Name)
		}
		if got := ColumnType(fields[pos]); got != want[i] {
			return nil, fmt.Errorf("%w: %s.%s is %s, want %s", domain.ErrSchemaCast, c.Relation, col.Name, got, want[i])
		}
		index[col.Name] = pos
	}
	return index, nil
}

func readRelation[T any](publishDir string, c domain.Contract, decode func(record) T) ([]T, error) {
	pf, closeFile, err := openFile(publishDir, c.Relation)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	index, err := columnIndex(pf.Schema(), c)
	if err != nil {
		return nil, err
	}

	r := pq.NewReader(pf)
	defer r.Close()

	out := make([]T, 0, pf.NumRows())
	buf := make([]pq.Row, 256)
	for {
		n, err := r.ReadRows(buf)
		// Values may alias reader pages; decode copies them out before the
		// next read.
		for _, row := range buf[:n] {
			out = append(out, decode(record{row: row, index: index}))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", FileName(c.Relation), err)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
