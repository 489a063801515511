package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

// AllTools returns every tool the server registers, in registration order.
// cmd/generate-tools-doc walks this list to produce TOOLS.md.
func AllTools() []mcp.Tool {
	return []mcp.Tool{
		CreateQueryMetricsTool(),
		CreateSearchMetricsTool(),
		CreateGetMetricTagsTool(),
		CreateGenerateChartTool(),
	}
}

func CreateQueryMetricsTool() mcp.Tool {
	return mcp.NewTool(dispatch.ToolQueryMetrics,
		mcp.WithDescription(`Query timeseries metrics from Datadog.

Returns the matching series as ordered [timestamp, value] pairs (unix seconds),
one series per scope.`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Datadog metric query (e.g., 'avg:system.cpu.user{*}')"),
		),
		mcp.WithNumber("days_back",
			mcp.DefaultNumber(dispatch.DefaultDaysBack),
			mcp.Description("Number of days to look back from now (default: 7)"),
		),
		mcp.WithOutputSchema[metrics.QueryResult](),
	)
}

func CreateSearchMetricsTool() mcp.Tool {
	return mcp.NewTool(dispatch.ToolSearchMetrics,
		mcp.WithDescription("Search for available Datadog metrics by prefix. Returns at most 50 names."),
		mcp.WithString("prefix",
			mcp.Required(),
			mcp.Description("Metric prefix to search (e.g., 'aws.applicationelb', 'system.cpu')"),
		),
		mcp.WithOutputSchema[metrics.SearchResult](),
	)
}

func CreateGetMetricTagsTool() mcp.Tool {
	return mcp.NewTool(dispatch.ToolGetMetricTags,
		mcp.WithDescription("Get information about tags available for a metric."),
		mcp.WithString("metric_name",
			mcp.Required(),
			mcp.Description("Full metric name (e.g., 'aws.applicationelb.request_count')"),
		),
		mcp.WithOutputSchema[metrics.TagsResult](),
	)
}

func CreateGenerateChartTool() mcp.Tool {
	return mcp.NewTool(dispatch.ToolGenerateChart,
		mcp.WithDescription("Generate a PNG chart for a Datadog metric query. Returns the image base64-encoded."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Datadog metric query (e.g., 'avg:system.cpu.user{*}')"),
		),
		mcp.WithNumber("days_back",
			mcp.DefaultNumber(dispatch.DefaultDaysBack),
			mcp.Description("Number of days to look back from now (default: 7)"),
		),
		mcp.WithString("title",
			mcp.Description("Chart title (optional, defaults to the query)"),
		),
		mcp.WithOutputSchema[chart.Result](),
	)
}
