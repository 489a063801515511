package dispatch

import (
	"context"
	"errors"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

// Envelope is the synchronous framing of a successful outcome.
type Envelope struct {
	Status     string         `json:"status"`
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
	Result     any            `json:"result"`
}

// FrameSync wraps an outcome for a synchronous transport. Validation errors
// and executor-layer error results both come back as an error so the
// transport can surface them as a client failure instead of a 200 envelope.
func FrameSync(out Outcome) (*Envelope, error) {
	if out.Err != nil {
		return nil, out.Err
	}
	if msg, failed := resultError(out.Result); failed {
		return nil, errors.New(msg)
	}
	return &Envelope{
		Status:     metrics.StatusSuccess,
		Tool:       out.Tool,
		Parameters: out.Parameters,
		Result:     out.Result,
	}, nil
}

// Stream event types, in emission order. start is always first; exactly one
// of complete or error is always last, and nothing repeats.
const (
	EventStart    = "start"
	EventData     = "data"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is one self-contained frame of a streamed invocation.
type Event struct {
	Type       string         `json:"type"`
	Tool       string         `json:"tool,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Result     any            `json:"result,omitempty"`
	Status     string         `json:"status,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Sink consumes one framed event. A non-nil error means the transport is
// gone; the stream stops emitting immediately.
type Sink func(Event) error

// Stream emits the ordered event sequence for one invocation: start, then —
// after the dispatch has run to completion — either data followed by
// complete, or a single terminal error. The executors are not incremental,
// so there are deliberately no partial results: the invocation runs
// synchronously and is framed as three events afterwards. If the context is
// cancelled before the terminal frame, no further events are written.
func Stream(ctx context.Context, d *Dispatcher, inv Invocation, sink Sink) {
	if err := sink(Event{Type: EventStart, Tool: inv.Tool, Parameters: inv.Parameters}); err != nil {
		return
	}

	out := d.Dispatch(ctx, inv)

	if ctx.Err() != nil {
		return
	}

	if out.Err != nil {
		_ = sink(Event{Type: EventError, Error: out.Err.Error()})
		return
	}
	if msg, failed := resultError(out.Result); failed {
		_ = sink(Event{Type: EventError, Error: msg})
		return
	}

	if err := sink(Event{Type: EventData, Result: out.Result}); err != nil {
		return
	}
	_ = sink(Event{Type: EventComplete, Status: metrics.StatusSuccess})
}

// resultError inspects a typed executor result and reports its captured
// failure, if any.
func resultError(result any) (string, bool) {
	switch r := result.(type) {
	case metrics.QueryResult:
		if !r.IsSuccess() {
			return r.Error, true
		}
	case metrics.SearchResult:
		if r.Status != metrics.StatusSuccess {
			return r.Error, true
		}
	case metrics.TagsResult:
		if r.Status != metrics.StatusSuccess {
			return r.Error, true
		}
	case chart.Result:
		if !r.IsSuccess() {
			return r.Error, true
		}
	}
	return "", false
}
