package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// PrometheusRecorder forwards pipeline metrics to a Prometheus registry. The
// batch binary has no scrape endpoint; Summary gathers the registry at the
// end of a run and logs the totals.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	buildDuration prometheus.Histogram
	fileDuration  prometheus.Histogram
	fileOutcomes  *prometheus.CounterVec
	genFailures   *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	r := &PrometheusRecorder{
		registry: reg,
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ctosite_build_duration_seconds",
			Help:    "Total duration of one build run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ctosite_file_duration_seconds",
			Help:    "Duration of processing one model file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		fileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctosite_file_outcomes_total",
			Help: "Per-file terminal states.",
		}, []string{"outcome"}),
		genFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctosite_generator_failures_total",
			Help: "Isolated generator failures by visitor key.",
		}, []string{"visitor"}),
	}
	reg.MustRegister(r.buildDuration, r.fileDuration, r.fileOutcomes, r.genFailures)
	return r
}

func (r *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	r.buildDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) ObserveFileDuration(d time.Duration) {
	r.fileDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncFileOutcome(outcome FileOutcome) {
	r.fileOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (r *PrometheusRecorder) IncGeneratorFailure(visitor string) {
	r.genFailures.WithLabelValues(visitor).Inc()
}

// Summary logs counter totals gathered from the registry.
func (r *PrometheusRecorder) Summary() {
	families, err := r.registry.Gather()
	if err != nil {
		slog.Warn("Failed to gather metrics", "error", err.Error())
		return
	}
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			attrs := []any{slog.String("metric", mf.GetName()), slog.Float64("value", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, slog.String(lp.GetName(), lp.GetValue()))
			}
			slog.Info("Build metric", attrs...)
		}
	}
}

// Outcomes returns the current counter value for one outcome label, for tests
// and the end-of-run summary line.
func (r *PrometheusRecorder) Outcomes(outcome FileOutcome) float64 {
	m := &dto.Metric{}
	c, err := r.fileOutcomes.GetMetricWithLabelValues(string(outcome))
	if err != nil {
		return 0
	}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
