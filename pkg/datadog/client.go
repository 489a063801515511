// Package datadog wraps the Datadog API client behind a narrow Loader
// interface so the rest of the server never touches SDK types directly.
package datadog

import (
	"context"
	"fmt"

	ddapi "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/config"
)

// Loader defines the upstream metrics operations the executors need.
type Loader interface {
	// QueryTimeseries runs one time-range query. from and to are unix seconds.
	QueryTimeseries(ctx context.Context, query string, from, to int64) (*TimeseriesResponse, error)
	// SearchMetrics lists metric names matching a prefix.
	SearchMetrics(ctx context.Context, prefix string) (*SearchResponse, error)
}

// RealLoader implements Loader against the Datadog v1 metrics API.
type RealLoader struct {
	api  *datadogV1.MetricsApi
	site string

	apiKey string
	appKey string
}

var _ Loader = (*RealLoader)(nil)

// NewLoader builds the process-lifetime Datadog client from the immutable
// configuration. The loader is safe for concurrent use: it carries no
// per-call mutable state, only credentials.
func NewLoader(cfg *config.Config) *RealLoader {
	apiClient := ddapi.NewAPIClient(ddapi.NewConfiguration())
	return &RealLoader{
		api:    datadogV1.NewMetricsApi(apiClient),
		site:   cfg.Site,
		apiKey: cfg.APIKey,
		appKey: cfg.AppKey,
	}
}

// authContext attaches the API credentials and site to the request context,
// which is how the Datadog SDK expects authentication to be supplied.
func (l *RealLoader) authContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, ddapi.ContextAPIKeys, map[string]ddapi.APIKey{
		"apiKeyAuth": {Key: l.apiKey},
		"appKeyAuth": {Key: l.appKey},
	})
	return context.WithValue(ctx, ddapi.ContextServerVariables, map[string]string{
		"site": l.site,
	})
}

func (l *RealLoader) QueryTimeseries(ctx context.Context, query string, from, to int64) (*TimeseriesResponse, error) {
	resp, _, err := l.api.QueryMetrics(l.authContext(ctx), from, to, query)
	if err != nil {
		return nil, fmt.Errorf("error querying metrics: %w", err)
	}

	out := &TimeseriesResponse{}
	for _, s := range resp.GetSeries() {
		raw := RawSeries{Scope: s.GetScope()}
		for _, p := range s.GetPointlist() {
			// []*float64 pairs; the normalization layer decodes them.
			raw.Points = append(raw.Points, p)
		}
		out.Series = append(out.Series, raw)
	}
	return out, nil
}

func (l *RealLoader) SearchMetrics(ctx context.Context, prefix string) (*SearchResponse, error) {
	resp, _, err := l.api.ListMetrics(l.authContext(ctx), prefix)
	if err != nil {
		return nil, fmt.Errorf("error listing metrics: %w", err)
	}

	if results, ok := resp.GetResultsOk(); ok {
		return &SearchResponse{Results: results.GetMetrics()}, nil
	}
	return &SearchResponse{}, nil
}
