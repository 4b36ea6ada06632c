// Package metrics defines observability hooks for the build pipeline.
package metrics

import "time"

// FileOutcome enumerates per-file terminal states for counters.
type FileOutcome string

const (
	OutcomeSuccess FileOutcome = "success"
	OutcomeSkipped FileOutcome = "skipped" // legacy-scheme copy-only
	OutcomeCached  FileOutcome = "cached"  // unchanged, served from build cache
	OutcomeFailed  FileOutcome = "failed"
)

// Recorder defines observability hooks for build and file metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveFileDuration(d time.Duration)
	IncFileOutcome(outcome FileOutcome)
	IncGeneratorFailure(visitor string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) ObserveFileDuration(time.Duration)  {}
func (NoopRecorder) IncFileOutcome(FileOutcome)         {}
func (NoopRecorder) IncGeneratorFailure(string)         {}
