package container

import (
	"fmt"
	"strings"
	"time"
)

// TraceStep records one pipeline stage's outcome for one node of a
// resolution, per spec section 4.5's observability requirement.
type TraceStep struct {
	ServiceID string
	Stage     string
	Outcome   string // "hit", "miss", "matched", "built", "error"
	Duration  time.Duration
}

// ResolutionTrace accumulates every TraceStep produced while servicing one
// Make/Get call, keyed by the call's traceId so nested child resolutions
// all write into the same trace.
type ResolutionTrace struct {
	TraceID string
	Steps   []TraceStep
}

func newResolutionTrace(traceID string) *ResolutionTrace {
	return &ResolutionTrace{TraceID: traceID}
}

func (t *ResolutionTrace) record(step TraceStep) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, step)
}

// String renders the trace as an indented, human-readable sequence,
// suitable for attaching to a KernelError.
func (t *ResolutionTrace) String() string {
	if t == nil || len(t.Steps) == 0 {
		return ""
	}
	var b strings.Builder
	for _, step := range t.Steps {
		fmt.Fprintf(&b, "%s/%s: %s (%s)\n", step.ServiceID, step.Stage, step.Outcome, step.Duration)
	}
	return b.String()
}
