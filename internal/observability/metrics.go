package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hangarbay"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// normalize and publish stages.
type Metrics struct {
	RowsParsed     *prometheus.CounterVec   // labels: relation
	DegradedFields *prometheus.CounterVec   // labels: kind
	StageDuration  *prometheus.HistogramVec // labels: stage
	StageFailures  *prometheus.CounterVec   // labels: stage

	// Publish collaborators.
	PublishDuration *prometheus.HistogramVec // labels: store
	NotifyFailures  *prometheus.CounterVec   // labels: notifier

	LastSuccess     prometheus.Gauge
	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsParsed,
		m.DegradedFields,
		m.StageDuration,
		m.StageFailures,
		m.PublishDuration,
		m.NotifyFailures,
		m.LastSuccess,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_parsed_total",
			Help:      "Rows produced by the normalize stage, by relation.",
		}, []string{"relation"}),
		DegradedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_fields_total",
			Help:      "Source fields degraded to null, empty, or pass-through, by kind.",
		}, []string{"kind"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of a complete stage run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Stage runs that ended in an error.",
		}, []string{"stage"}),
		PublishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Duration of loading one publish store.",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"store"}),
		NotifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Completion notices that could not be delivered.",
		}, []string{"notifier"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that completed every stage.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
	}
}
