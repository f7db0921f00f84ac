package container

import (
	"sync"
	"time"

	"github.com/beorn7/perks/quantile"
)

// StepTelemetry tracks per-stage resolution latency distributions using
// streaming quantile estimation, so an operator can answer "how long does
// Evaluate typically take" without retaining every individual sample.
// The Engine observes two stages: "LifecycleLookup" and "Evaluate".
// Grounded on xraph-go-utils's use of github.com/beorn7/perks/quantile for
// request-latency summaries.
type StepTelemetry struct {
	mu      sync.Mutex
	streams map[string]*quantile.Stream
}

// NewStepTelemetry creates an empty telemetry collector. Targets mirror a
// typical latency SLO dashboard: p50/p90/p99 with modest error bounds.
func NewStepTelemetry() *StepTelemetry {
	return &StepTelemetry{streams: make(map[string]*quantile.Stream)}
}

func (t *StepTelemetry) streamFor(stage string) *quantile.Stream {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[stage]
	if !ok {
		s = quantile.NewTargeted(map[float64]float64{
			0.50: 0.01,
			0.90: 0.01,
			0.99: 0.001,
		})
		t.streams[stage] = s
	}
	return s
}

// Observe records one stage's duration.
func (t *StepTelemetry) Observe(stage string, d time.Duration) {
	t.streamFor(stage).Insert(float64(d.Nanoseconds()))
}

// Quantile returns the q-quantile (0..1) latency for stage, as a
// time.Duration, or zero if no samples were observed yet.
func (t *StepTelemetry) Quantile(stage string, q float64) time.Duration {
	t.mu.Lock()
	s, ok := t.streams[stage]
	t.mu.Unlock()
	if !ok {
		return 0
	}
	return time.Duration(s.Query(q))
}

// Stages returns the set of stage names with at least one observation.
func (t *StepTelemetry) Stages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.streams))
	for stage := range t.streams {
		out = append(out, stage)
	}
	return out
}
