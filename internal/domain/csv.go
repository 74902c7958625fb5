package domain

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// utf8BOM prefixes some FAA files exported from Windows tooling.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// nullCells are cell values read as blank.
var nullCells = map[string]struct{}{"": {}, "None": {}}

// sourceTable is a header-indexed, fully materialized delimited file.
type sourceTable struct {
	index map[string]int
	rows  [][]string
}

// readSourceTable reads a comma-delimited file with a header row and
// verifies that every required column is present.
func readSourceTable(r io.Reader, required []string) (*sourceTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w: file is empty", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows)+1, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}

	return &sourceTable{index: index, rows: rows}, nil
}

// cell returns the trimmed value of col in row, or "" when the cell is
// missing or null.
func (t *sourceTable) cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	if _, null := nullCells[v]; null {
		return ""
	}
	return v
}

// isBlankRecord reports whether rec is a whitespace-only line with no
// delimiters. Rows of empty cells are records and are kept.
func isBlankRecord(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
