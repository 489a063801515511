// Package mcp exposes the metrics tools over the MCP stdio protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
)

// ServerOptions contains configuration for the MCP server.
type ServerOptions struct {
	Dispatcher *dispatch.Dispatcher
}

const (
	serverName    = "datadog-metrics-mcp"
	serverVersion = "1.0.0"

	serverInstructions = `You are connected to a Datadog metrics server with four tools.

## WORKFLOW

1. If you don't know the exact metric name, call search_metrics with a prefix
   (e.g. 'system.cpu', 'aws.applicationelb') and pick a name from the results.
2. Query with query_metrics using full Datadog query syntax, e.g.
   'avg:system.cpu.user{*}' or 'sum:aws.applicationelb.httpcode_target_5xx{account_name:prod}'.
3. Use days_back to control the time window (default: 7 days ending now).
4. For a visual answer, call generate_metric_chart with the same query; it
   returns a base64-encoded PNG.

## NOTES

- Metric values are passed through unmodified; no aggregation happens here.
- get_metric_tags returns guidance only: discover tags by querying the metric
  with label filters.`
)

type contextKey string

// TestDispatcherKey is the context key for injecting a test dispatcher.
const TestDispatcherKey contextKey = "test-dispatcher"

// NewMCPServer creates the MCP server with the four metrics tools registered.
func NewMCPServer(opts ServerOptions) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	SetupTools(mcpServer, opts)

	return mcpServer
}

// SetupTools registers the tool definitions and handlers.
func SetupTools(mcpServer *server.MCPServer, opts ServerOptions) {
	mcpServer.AddTool(CreateQueryMetricsTool(), QueryMetricsHandler(opts))
	mcpServer.AddTool(CreateSearchMetricsTool(), SearchMetricsHandler(opts))
	mcpServer.AddTool(CreateGetMetricTagsTool(), GetMetricTagsHandler(opts))
	mcpServer.AddTool(CreateGenerateChartTool(), GenerateChartHandler(opts))
}

// getDispatcher resolves the dispatcher for a request, preferring a
// test-injected one from the context.
func getDispatcher(ctx context.Context, opts ServerOptions) *dispatch.Dispatcher {
	if injected := ctx.Value(TestDispatcherKey); injected != nil {
		if d, ok := injected.(*dispatch.Dispatcher); ok {
			return d
		}
	}
	return opts.Dispatcher
}
