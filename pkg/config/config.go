// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultSite     = "datadoghq.com"
	defaultHTTPPort = 8000
)

// Config holds the immutable process configuration. It is constructed once at
// startup and shared read-only across all requests.
type Config struct {
	// APIKey is the Datadog API key (DD_API_KEY, required).
	APIKey string
	// AppKey is the Datadog application key (DD_APP_KEY, required).
	AppKey string
	// Site is the Datadog site, e.g. datadoghq.com or datadoghq.eu (DD_SITE).
	Site string
	// AuthToken gates the HTTP surface when non-empty (MCP_AUTH_TOKEN).
	// An empty token disables the gate entirely.
	AuthToken string
	// HTTPPort is the default listen port for the HTTP bridge (MCP_HTTP_PORT).
	HTTPPort int
}

// Load reads configuration from the environment, pulling in a .env file first
// when one exists. It returns an error if the mandatory Datadog credentials
// are missing; callers are expected to exit before serving in that case.
func Load() (*Config, error) {
	// Best effort: a missing .env file is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}

	cfg := &Config{
		APIKey:    os.Getenv("DD_API_KEY"),
		AppKey:    os.Getenv("DD_APP_KEY"),
		Site:      os.Getenv("DD_SITE"),
		AuthToken: os.Getenv("MCP_AUTH_TOKEN"),
		HTTPPort:  defaultHTTPPort,
	}

	if cfg.APIKey == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("DD_API_KEY and DD_APP_KEY environment variables are required")
	}

	if cfg.Site == "" {
		cfg.Site = defaultSite
	}

	if portStr := os.Getenv("MCP_HTTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid MCP_HTTP_PORT: %q", portStr)
		}
		cfg.HTTPPort = port
	}

	return cfg, nil
}

// AuthEnabled reports whether the HTTP bearer-token gate is configured.
func (c *Config) AuthEnabled() bool {
	return c.AuthToken != ""
}
