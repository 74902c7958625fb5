package domain

import "errors"

var (
	// ErrMissingInput is returned when an expected snapshot file is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrMissingColumn is returned when a source file lacks an expected column.
	ErrMissingColumn = errors.New("missing column")

	// ErrSchemaCast is returned when a relation cannot be coerced to its contract.
	ErrSchemaCast = errors.New("schema cast failed")

	// ErrMissingMetadata is returned when stage metadata or the raw manifest is absent.
	ErrMissingMetadata = errors.New("missing metadata")
)
