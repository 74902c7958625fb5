package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hangarbay/registry-etl/internal/adapter/parquet"
	"github.com/hangarbay/registry-etl/internal/adapter/snapshot"
	"github.com/hangarbay/registry-etl/internal/domain"
)

// Normalize parses the raw snapshot into the five relations, validates them
// against their contracts, and writes the Parquet set with normalize.json.
func (p *Pipeline) Normalize(ctx context.Context) (*domain.NormalizeMetadata, error) {
	src, err := snapshot.Open(p.opts.DataDir, p.opts.SnapshotDate)
	if err != nil {
		return nil, err
	}
	logger := p.logger.With("snapshot", src.Date())
	logger.Info("normalizing snapshot", "dir", src.Dir())

	if m, err := src.Manifest(); err != nil {
		logger.Warn("snapshot manifest unavailable", "error", err)
	} else if m.SnapshotDate != "" && m.SnapshotDate != src.Date() {
		logger.Warn("manifest snapshot date does not match directory", "manifest_date", m.SnapshotDate)
	}

	var master domain.MasterRelations
	var stats domain.ParseStats
	err = parseFile(src, snapshot.MasterFile, func(r io.Reader) error {
		var err error
		master, stats, err = domain.ParseMaster(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	rel := &domain.Relations{MasterRelations: master}
	err = parseFile(src, snapshot.AircraftRefFile, func(r io.Reader) error {
		var err error
		rel.AircraftMakeModel, err = domain.ParseAircraftRef(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = parseFile(src, snapshot.EngineFile, func(r io.Reader) error {
		var err error
		rel.Engines, err = domain.ParseEngineRef(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := domain.CastAll(rel); err != nil {
		return nil, err
	}

	meta := domain.NormalizeMetadata{
		SnapshotDate: src.Date(),
		NormalizedAt: p.now(),
		RowCounts:    rel.RowCounts(),
		Degraded:     stats.Degraded(),
	}
	if err := parquet.NewWriter(p.PublishDir(), logger).WriteSet(ctx, rel, meta); err != nil {
		return nil, err
	}

	for name, n := range meta.RowCounts {
		p.metrics.RowsParsed.WithLabelValues(name).Add(float64(n))
	}
	for kind, n := range meta.Degraded {
		p.metrics.DegradedFields.WithLabelValues(kind).Add(float64(n))
	}
	logger.Info("normalize complete",
		"records", stats.Records,
		"aircraft", len(rel.Aircraft),
		"owners", len(rel.Owners),
		"aircraft_make_model", len(rel.AircraftMakeModel),
		"engines", len(rel.Engines),
		"degraded", meta.Degraded,
	)
	return &meta, nil
}

// parseFile opens name from src and hands it to parse.
func parseFile(src *snapshot.Source, name string, parse func(io.Reader) error) (err error) {
	rc, err := src.OpenFile(name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rc.Close())
	}()
	if err := parse(rc); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
