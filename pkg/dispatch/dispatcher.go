// Package dispatch maps tool invocations onto the executors and frames their
// outcomes for synchronous and streaming transports. It is the single entry
// point both the MCP server and the HTTP bridge go through, so every tool
// behaves identically on both surfaces.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

// Tool names exposed on both transports.
const (
	ToolQueryMetrics  = "query_metrics"
	ToolSearchMetrics = "search_metrics"
	ToolGetMetricTags = "get_metric_tags"
	ToolGenerateChart = "generate_metric_chart"
)

const (
	// DefaultDaysBack is the query window applied when days_back is absent.
	DefaultDaysBack = 7

	secondsPerDay = 86400
)

// Invocation is one transport-agnostic tool call: a tool name plus a
// parameter bag. Transient, one per request.
type Invocation struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// Outcome is the result of dispatching one invocation. Err carries
// dispatch-layer validation failures (unknown tool, missing parameter) only;
// backend and rendering failures live inside Result as typed error results.
type Outcome struct {
	Tool       string
	Parameters map[string]any
	Result     any
	Err        error
}

// Dispatcher routes invocations to the executors. It holds no per-request
// state and is safe for concurrent use.
type Dispatcher struct {
	executor *metrics.Executor
	renderer *chart.Renderer
	now      func() time.Time
}

// NewDispatcher builds a Dispatcher over the given executor and renderer.
func NewDispatcher(executor *metrics.Executor, renderer *chart.Renderer) *Dispatcher {
	return &Dispatcher{
		executor: executor,
		renderer: renderer,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin the query
// window.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch validates the invocation's parameters, runs exactly one executor
// and returns its outcome. The days_back window is derived at call time:
// (now - days_back*86400, now).
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Outcome {
	out := Outcome{Tool: inv.Tool, Parameters: inv.Parameters}

	switch inv.Tool {
	case ToolQueryMetrics:
		query, err := requireString(inv.Parameters, "query")
		if err != nil {
			out.Err = err
			return out
		}
		daysBack, err := daysBackParam(inv.Parameters)
		if err != nil {
			out.Err = err
			return out
		}
		from, to := d.timeRange(daysBack)
		out.Result = d.executor.Query(ctx, query, from, to)

	case ToolSearchMetrics:
		prefix, err := requireString(inv.Parameters, "prefix")
		if err != nil {
			out.Err = err
			return out
		}
		out.Result = d.executor.Search(ctx, prefix)

	case ToolGetMetricTags:
		metricName, err := requireString(inv.Parameters, "metric_name")
		if err != nil {
			out.Err = err
			return out
		}
		out.Result = d.executor.Tags(ctx, metricName)

	case ToolGenerateChart:
		query, err := requireString(inv.Parameters, "query")
		if err != nil {
			out.Err = err
			return out
		}
		daysBack, err := daysBackParam(inv.Parameters)
		if err != nil {
			out.Err = err
			return out
		}
		title := optionalString(inv.Parameters, "title", "")
		format := chart.FormatBase64
		if optionalString(inv.Parameters, "format", "") == string(chart.FormatPNG) {
			format = chart.FormatPNG
		}
		from, to := d.timeRange(daysBack)
		queryResult := d.executor.Query(ctx, query, from, to)
		out.Result = d.renderer.Render(queryResult, title, format)

	default:
		out.Err = fmt.Errorf("Unknown tool: %s", inv.Tool)
	}

	return out
}

func (d *Dispatcher) timeRange(daysBack int) (from, to int64) {
	to = d.now().Unix()
	from = to - int64(daysBack)*secondsPerDay
	return from, to
}

// daysBackParam reads days_back and rejects non-positive values, which would
// otherwise invert the query window (from > to).
func daysBackParam(params map[string]any) (int, error) {
	daysBack, err := optionalInt(params, "days_back", DefaultDaysBack)
	if err != nil {
		return 0, err
	}
	if daysBack < 1 {
		return 0, fmt.Errorf("parameter days_back must be a positive integer: %d", daysBack)
	}
	return daysBack, nil
}

func requireString(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %s must be a non-empty string", key)
	}
	return s, nil
}

func optionalString(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return def
}

// optionalInt reads an integer parameter. JSON bodies deliver numbers as
// float64 and query strings deliver them as strings, so both are accepted.
func optionalInt(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("parameter %s must be an integer: %q", key, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("parameter %s must be an integer", key)
	}
}
