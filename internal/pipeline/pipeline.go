// Package pipeline runs the normalize and publish stages over one FAA
// registry snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/hangarbay/registry-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// publishDirName is the normalize output directory under the data root.
const publishDirName = "publish"

// Publisher loads the normalized relations into a downstream store.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, rel *domain.Relations) error
	Info() domain.StoreInfo
}

// Notifier announces a completed publish. Failures are logged, never fatal.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, event domain.SnapshotPublished) error
}

// Options selects what a run processes.
type Options struct {
	DataDir      string
	SnapshotDate string          // empty selects the latest raw snapshot
	Stages       []string        // empty runs every stage
	Clock        clockwork.Clock // stamps metadata; nil uses the real clock
}

// Pipeline orchestrates the normalize and publish stages.
type Pipeline struct {
	opts       Options
	publishers []Publisher
	notifiers  []Notifier
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool

	mu     sync.Mutex
	status domain.RunStatus
}

// New creates a Pipeline.
func New(opts Options, publishers []Publisher, notifiers []Notifier, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		opts:       opts,
		publishers: publishers,
		notifiers:  notifiers,
		logger:     logger,
		metrics:    metrics,
	}
}

// PublishDir returns the normalize output directory, <dataDir>/publish.
func PublishDir(dataDir string) string {
	return filepath.Join(dataDir, publishDirName)
}

// PublishDir returns the publish directory of this pipeline.
func (p *Pipeline) PublishDir() string {
	return PublishDir(p.opts.DataDir)
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Status reports the current and last run.
func (p *Pipeline) Status() domain.RunStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Run executes the selected stages in order. The first failing stage stops
// the run.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "data_dir", p.opts.DataDir, "snapshot", p.opts.SnapshotDate, "stages", p.stages())
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	p.setStatus(func(s *domain.RunStatus) { s.Running = true })

	err := p.run(ctx)

	p.setStatus(func(s *domain.RunStatus) {
		s.Running = false
		s.LastError = ""
		if err != nil {
			s.LastError = err.Error()
			return
		}
		now := p.now()
		s.LastSuccess = &now
	})
	if err != nil {
		return err
	}

	p.ready.Store(true)
	p.metrics.LastSuccess.SetToCurrentTime()
	p.logger.Info("pipeline finished")
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	if p.runs(config.StageNormalize) {
		if err := p.timed(config.StageNormalize, func() error {
			meta, err := p.Normalize(ctx)
			if err == nil {
				p.setStatus(func(s *domain.RunStatus) { s.SnapshotDate = meta.SnapshotDate })
			}
			return err
		}); err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
	}

	if p.runs(config.StagePublish) {
		if err := p.timed(config.StagePublish, func() error {
			meta, err := p.Publish(ctx)
			if err == nil {
				p.setStatus(func(s *domain.RunStatus) { s.SnapshotDate = meta.SnapshotDate })
			}
			return err
		}); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}
	return nil
}

// timed runs fn and records its duration, counting failures.
func (p *Pipeline) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.StageFailures.WithLabelValues(stage).Inc()
		p.logger.Error("stage failed", "stage", stage, "error", err)
		return err
	}
	p.logger.Info("stage complete", "stage", stage, "duration", time.Since(start))
	return nil
}

// now returns the clock's UTC time truncated to the second.
func (p *Pipeline) now() time.Time {
	return p.opts.Clock.Now().UTC().Truncate(time.Second)
}

func (p *Pipeline) stages() []string {
	if len(p.opts.Stages) == 0 {
		return []string{config.StageNormalize, config.StagePublish}
	}
	return p.opts.Stages
}

func (p *Pipeline) runs(stage string) bool {
	return slices.Contains(p.stages(), stage)
}

func (p *Pipeline) setStatus(update func(*domain.RunStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	update(&p.status)
}
