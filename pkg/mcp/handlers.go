package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/resultutil"
)

// arguments extracts the parameter bag from a tool call request.
func arguments(req mcp.CallToolRequest) map[string]any {
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		return args
	}
	return map[string]any{}
}

// handleTool dispatches one invocation and frames it as an MCP result.
// Parameter validation and defaulting live in the dispatcher so the stdio and
// HTTP surfaces behave identically.
func handleTool(ctx context.Context, opts ServerOptions, tool string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := getDispatcher(ctx, opts).Dispatch(ctx, dispatch.Invocation{
		Tool:       tool,
		Parameters: arguments(req),
	})
	return resultutil.FromOutcome(out).ToMCPResult()
}

// QueryMetricsHandler handles timeseries queries.
func QueryMetricsHandler(opts ServerOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleTool(ctx, opts, dispatch.ToolQueryMetrics, req)
	}
}

// SearchMetricsHandler handles metric-name searches.
func SearchMetricsHandler(opts ServerOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleTool(ctx, opts, dispatch.ToolSearchMetrics, req)
	}
}

// GetMetricTagsHandler handles tag lookups.
func GetMetricTagsHandler(opts ServerOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleTool(ctx, opts, dispatch.ToolGetMetricTags, req)
	}
}

// GenerateChartHandler handles chart rendering.
func GenerateChartHandler(opts ServerOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleTool(ctx, opts, dispatch.ToolGenerateChart, req)
	}
}
