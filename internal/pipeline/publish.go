package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/hangarbay/registry-etl/internal/adapter/parquet"
	"github.com/hangarbay/registry-etl/internal/adapter/snapshot"
	"github.com/hangarbay/registry-etl/internal/domain"
)

// Publish reads the normalized set back from the publish directory, loads it
// into every configured store, writes publish.json and metadata.json, and
// announces the snapshot.
func (p *Pipeline) Publish(ctx context.Context) (*domain.PublishMetadata, error) {
	dir := p.PublishDir()
	norm, err := parquet.ReadNormalizeMetadata(dir)
	if err != nil {
		return nil, err
	}
	logger := p.logger.With("snapshot", norm.SnapshotDate)
	if p.opts.SnapshotDate != "" && p.opts.SnapshotDate != norm.SnapshotDate {
		logger.Warn("publishing the normalized snapshot, not the requested one", "requested", p.opts.SnapshotDate)
	}

	// The manifest is required for metadata.json; check it before touching
	// any store.
	manifest, err := readManifest(p.opts.DataDir, norm.SnapshotDate)
	if err != nil {
		return nil, err
	}

	rel, err := parquet.ReadSet(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing snapshot", "publishers", len(p.publishers))

	stores := make(map[string]domain.StoreInfo, len(p.publishers))
	for _, pub := range p.publishers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		err := pub.Publish(ctx, rel)
		p.metrics.PublishDuration.WithLabelValues(pub.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pub.Name(), err)
		}
		stores[pub.Name()] = pub.Info()
		logger.Info("store published", "store", pub.Name(), "duration", time.Since(start))
	}

	meta := domain.PublishMetadata{
		SnapshotDate: norm.SnapshotDate,
		PublishedAt:  p.now(),
		Stores:       stores,
	}
	if err := parquet.WriteMetadata(dir, parquet.PublishMetaFile, meta); err != nil {
		return nil, fmt.Errorf("write %s: %w", parquet.PublishMetaFile, err)
	}
	if err := parquet.WriteMetadata(dir, parquet.MetadataFile, consolidate(norm, manifest, meta)); err != nil {
		return nil, fmt.Errorf("write %s: %w", parquet.MetadataFile, err)
	}

	p.notify(ctx, domain.SnapshotPublished{
		SnapshotDate: meta.SnapshotDate,
		PublishedAt:  meta.PublishedAt,
		RowCounts:    norm.RowCounts,
		Stores:       storeNames(stores),
	})
	return &meta, nil
}

// notify sends the notice to every notifier. The data is already published,
// so failures are only logged and counted.
func (p *Pipeline) notify(ctx context.Context, event domain.SnapshotPublished) {
	for _, n := range p.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			p.metrics.NotifyFailures.WithLabelValues(n.Name()).Inc()
			p.logger.Warn("snapshot notice failed", "notifier", n.Name(), "snapshot", event.SnapshotDate, "error", err)
		}
	}
}

// readManifest reads the raw manifest of a snapshot. An absent snapshot
// directory or manifest is domain.ErrMissingMetadata.
func readManifest(dataDir, date string) (*domain.Manifest, error) {
	src, err := snapshot.Open(dataDir, date)
	if errors.Is(err, domain.ErrMissingInput) {
		return nil, fmt.Errorf("%w: raw manifest for %s: %v", domain.ErrMissingMetadata, date, err)
	}
	if err != nil {
		return nil, err
	}
	return src.Manifest()
}

// consolidate merges normalize metadata, raw provenance, and store info.
func consolidate(norm *domain.NormalizeMetadata, m *domain.Manifest, pub domain.PublishMetadata) domain.ConsolidatedMetadata {
	files := make([]string, 0, len(m.Files))
	for name := range m.Files {
		files = append(files, name)
	}
	sort.Strings(files)

	urls := make([]string, 0, len(files))
	hashes := make(map[string]string, len(files))
	for _, name := range files {
		f := m.Files[name]
		if f.URL != "" && !slices.Contains(urls, f.URL) {
			urls = append(urls, f.URL)
		}
		hashes[name] = f.SHA256
	}

	return domain.ConsolidatedMetadata{
		SnapshotDate: norm.SnapshotDate,
		FetchedAt:    m.CreatedAt,
		NormalizedAt: norm.NormalizedAt,
		PublishedAt:  pub.PublishedAt,
		RowCounts:    norm.RowCounts,
		SourceURLs:   urls,
		FileHashes:   hashes,
		Stores:       pub.Stores,
	}
}

func storeNames(stores map[string]domain.StoreInfo) []string {
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
