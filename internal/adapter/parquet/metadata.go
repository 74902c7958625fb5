package parquet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/hangarbay/registry-etl/internal/domain"
)

// WriteMetadata atomically writes v as indented JSON to <publishDir>/_meta/name.
func WriteMetadata(publishDir, name string, v any) error {
	dir := filepath.Join(publishDir, MetaDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create meta dir: %w", err)
	}
	return writeJSONFile(filepath.Join(dir, name), v)
}

// ReadMetadata decodes <publishDir>/_meta/name into v. A missing file is
// reported as domain.ErrMissingMetadata.
func ReadMetadata(publishDir, name string, v any) error {
	path := filepath.Join(publishDir, MetaDir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrMissingMetadata, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ReadNormalizeMetadata reads _meta/normalize.json.
func ReadNormalizeMetadata(publishDir string) (*domain.NormalizeMetadata, error) {
	var m domain.NormalizeMetadata
	if err := ReadMetadata(publishDir, NormalizeMetaFile, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
