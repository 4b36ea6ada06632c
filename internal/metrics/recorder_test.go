package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.ObserveFileDuration(time.Millisecond)
	r.IncFileOutcome(OutcomeSuccess)
	r.IncGeneratorFailure("typescript")
}

func TestPrometheusRecorderCountsOutcomes(t *testing.T) {
	r := NewPrometheusRecorder()
	r.IncFileOutcome(OutcomeSuccess)
	r.IncFileOutcome(OutcomeSuccess)
	r.IncFileOutcome(OutcomeFailed)
	r.IncGeneratorFailure("java")
	r.ObserveBuildDuration(2 * time.Second)
	r.ObserveFileDuration(5 * time.Millisecond)

	assert.Equal(t, 2.0, r.Outcomes(OutcomeSuccess))
	assert.Equal(t, 1.0, r.Outcomes(OutcomeFailed))
	assert.Equal(t, 0.0, r.Outcomes(OutcomeSkipped))

	// Summary only logs; it must not panic on a populated registry.
	r.Summary()
}
