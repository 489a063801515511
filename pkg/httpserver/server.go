// Package httpserver bridges the metrics tools onto a plain HTTP surface
// with SSE streaming siblings, for clients that don't speak the stdio MCP
// protocol.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/config"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
)

const (
	serviceName    = "datadog-metrics-mcp"
	serviceVersion = "1.0.0"

	healthEndpoint = "/health"

	defaultShutdownTimeout = 10 * time.Second
)

// Server holds the request-independent state of the HTTP bridge: the
// dispatcher and the optional bearer token. Both are immutable after
// construction and shared across concurrent requests.
type Server struct {
	dispatcher *dispatch.Dispatcher
	authToken  string
}

// New builds the HTTP bridge over the given dispatcher.
func New(cfg *config.Config, d *dispatch.Dispatcher) *Server {
	return &Server{
		dispatcher: d,
		authToken:  cfg.AuthToken,
	}
}

// Handler returns the full route table wrapped in the auth gate and request
// logging. Exposed separately from Serve so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+healthEndpoint, s.handleHealth)
	mux.HandleFunc("GET /tools", s.handleTools)

	for _, tool := range []string{
		dispatch.ToolQueryMetrics,
		dispatch.ToolSearchMetrics,
		dispatch.ToolGetMetricTags,
		dispatch.ToolGenerateChart,
	} {
		mux.HandleFunc("GET /"+tool, s.handleToolSync(tool))
		mux.HandleFunc("GET /"+tool+"/stream", s.handleToolStream(tool))
	}

	mux.HandleFunc("POST /call", s.handleCall)
	mux.HandleFunc("POST /call/stream", s.handleCallStream)

	return loggingMiddleware(s.authMiddleware(mux))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Incoming request", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// Serve runs the HTTP bridge until the context is cancelled or a termination
// signal arrives, then shuts down gracefully.
func Serve(ctx context.Context, s *Server, listenAddr string) error {
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: s.Handler(),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "listen_addr", listenAddr, "auth_required", s.authToken != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		slog.Warn("Received signal, initiating graceful shutdown", "signal", sig)
		cancel()
	case <-ctx.Done():
		slog.Warn("Context cancelled, initiating graceful shutdown")
	case err := <-serverErr:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer shutdownCancel()

	slog.Info("Shutting down HTTP server gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	slog.Info("HTTP server shutdown complete")
	return nil
}
