// Package snapshot locates a raw FAA snapshot on disk and opens its files.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/hangarbay/registry-etl/internal/domain"
)

// Files extracted into every raw snapshot directory.
const (
	MasterFile      = "MASTER.txt"
	AircraftRefFile = "ACFTREF.txt"
	EngineFile      = "ENGINE.txt"
	ManifestFile    = "manifest.json"
	rawDirName      = "raw"
)

// Source is one raw snapshot directory, <data>/raw/<date>.
type Source struct {
	date string
	dir  string
}

// Open resolves the snapshot under dataDir. An empty date selects the
// lexicographically latest snapshot directory.
func Open(dataDir, date string) (*Source, error) {
	rawDir := filepath.Join(dataDir, rawDirName)
	if date == "" {
		latest, err := Latest(rawDir)
		if err != nil {
			return nil, err
		}
		date = latest
	}

	dir := filepath.Join(rawDir, date)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: snapshot directory %s not found", domain.ErrMissingInput, dir)
	}
	return &Source{date: date, dir: dir}, nil
}

// Latest returns the name of the last snapshot directory under rawDir in
// sorted order.
func Latest(rawDir string) (string, error) {
	entries, err := os.ReadDir(rawDir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: no raw data directory at %s", domain.ErrMissingInput, rawDir)
	}
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no snapshots under %s", domain.ErrMissingInput, rawDir)
	}
	sort.Strings(names)
	return names[len(names)-1], nil
}

// Date returns the snapshot directory name.
func (s *Source) Date() string { return s.date }

// Dir returns the snapshot directory path.
func (s *Source) Dir() string { return s.dir }

// OpenFile opens a snapshot file by name. A missing file is reported as
// domain.ErrMissingInput.
func (s *Source) OpenFile(name string) (io.ReadCloser, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Manifest reads manifest.json. A missing manifest is reported as
// domain.ErrMissingMetadata.
func (s *Source) Manifest() (*domain.Manifest, error) {
	path := filepath.Join(s.dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingMetadata, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}
