package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/common/promslog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/config"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/datadog"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/httpserver"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/mcp"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

func main() {
	// Parse command line flags
	var listen = flag.String("listen", "", "Listen address for HTTP mode (e.g., :8000, 127.0.0.1:8000)")
	var httpMode = flag.Bool("http", false, "Serve the HTTP bridge on the configured port instead of stdio")
	var logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	// Configure slog with specified log level
	configureLogging(*logLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dispatcher := dispatch.NewDispatcher(
		metrics.NewExecutor(datadog.NewLoader(cfg)),
		chart.NewRenderer(),
	)

	slog.Info("Starting server", "site", cfg.Site, "auth_enabled", cfg.AuthEnabled())

	if *listen != "" || *httpMode {
		// HTTP bridge mode
		addr := *listen
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.HTTPPort)
		}
		ctx := context.Background()
		if err := httpserver.Serve(ctx, httpserver.New(cfg, dispatcher), addr); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	} else {
		// Start server on stdio (default mode)
		mcpServer := mcp.NewMCPServer(mcp.ServerOptions{Dispatcher: dispatcher})
		stdioServer := server.NewStdioServer(mcpServer)
		if err := stdioServer.Listen(context.Background(), os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}
}

// configureLogging sets up the slog logger with the specified log level
func configureLogging(levelStr string) {
	level := promslog.NewLevel()
	err := level.Set(levelStr)
	if err != nil {
		log.Fatal(err.Error())
	}

	format := promslog.NewFormat()
	err = format.Set("logfmt")
	if err != nil {
		log.Fatal(err.Error())
	}

	logger := promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Style:  promslog.GoKitStyle,
	})
	slog.SetDefault(logger)
}
