package metrics

import (
	"context"
	"log/slog"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/datadog"
)

// searchResultLimit caps the number of metric names a search returns.
const searchResultLimit = 50

// Executor runs the query, search and tag operations against the metrics
// backend. Its methods never return an error: every upstream or library
// failure reaching this boundary is captured into the result's Status/Error
// fields, so callers at the dispatch layer need no error handling for
// backend failures.
type Executor struct {
	loader datadog.Loader
}

// NewExecutor builds an Executor over the given backend loader.
func NewExecutor(loader datadog.Loader) *Executor {
	return &Executor{loader: loader}
}

// Query runs one time-range query. from and to are unix seconds, from <= to.
// Query syntax is validated upstream; this layer does not parse the query
// language.
func (e *Executor) Query(ctx context.Context, query string, from, to int64) QueryResult {
	resp, err := e.loader.QueryTimeseries(ctx, query, from, to)
	if err != nil {
		slog.Error("Failed to query metrics", "query", query, "err", err)
		return QueryResult{
			Status: StatusError,
			Query:  query,
			Error:  err.Error(),
		}
	}

	var series []Series
	for _, raw := range resp.Series {
		if s, ok := NormalizeSeries(raw); ok {
			series = append(series, s)
		}
	}

	return QueryResult{
		Status:      StatusSuccess,
		Query:       query,
		From:        from,
		To:          to,
		SeriesCount: len(series),
		Series:      series,
	}
}

// Search lists metric names matching a prefix, truncated to the first 50 in
// whatever order upstream returned them.
func (e *Executor) Search(ctx context.Context, prefix string) SearchResult {
	resp, err := e.loader.SearchMetrics(ctx, prefix)
	if err != nil {
		slog.Error("Failed to search metrics", "prefix", prefix, "err", err)
		return SearchResult{
			Status: StatusError,
			Prefix: prefix,
			Error:  err.Error(),
		}
	}

	names := extractNames(resp.Results)
	count := len(names)
	if len(names) > searchResultLimit {
		names = names[:searchResultLimit]
	}

	return SearchResult{
		Status:  StatusSuccess,
		Prefix:  prefix,
		Count:   count,
		Metrics: names,
	}
}

// extractNames pulls metric names out of the loosely specified search result
// container: a wrapper object holding the actual list is probed before
// falling back to direct iteration.
func extractNames(results any) []string {
	switch v := results.(type) {
	case nil:
		return nil
	case map[string]any:
		if inner, ok := v["results"]; ok {
			return extractNames(inner)
		}
		if inner, ok := v["metrics"]; ok {
			return extractNames(inner)
		}
		return nil
	case []string:
		return v
	case []any:
		var names []string
		for _, item := range v {
			if name := itemName(item); name != "" {
				names = append(names, name)
			}
		}
		return names
	default:
		return nil
	}
}

func itemName(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	return ""
}

// Tags returns tag information for a metric. The upstream API offers no
// direct tag enumeration for an arbitrary metric, so this is an explicit
// informational placeholder rather than a dropped tool; the message points
// callers at filtered queries instead.
func (e *Executor) Tags(ctx context.Context, metricName string) TagsResult {
	return TagsResult{
		Status:  StatusSuccess,
		Metric:  metricName,
		Message: "Use metric query with filters to discover tags",
	}
}
