// Package chart turns a normalized query result into a raster chart through
// a deterministic layout contract: one marked line per series labeled by
// scope, a shared title, grid, legend and a time-formatted x-axis.
package chart

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

// Format selects how the encoded image travels in the result.
type Format string

const (
	// FormatPNG returns the raw PNG bytes.
	FormatPNG Format = "png"
	// FormatBase64 returns the PNG base64-encoded in the JSON payload.
	FormatBase64 Format = "base64"

	pngMIMEType = "image/png"
)

// Result is the outcome of one chart rendering.
type Result struct {
	Status string `json:"status"`
	Query  string `json:"query,omitempty"`
	Format string `json:"format,omitempty"`
	// Image holds the base64-encoded PNG when Format is base64.
	Image string `json:"image,omitempty"`
	// ImageBytes holds the raw PNG when Format is png. Raw bytes never go
	// through JSON; the HTTP layer writes them directly.
	ImageBytes []byte `json:"-"`
	MIMEType   string `json:"mime_type,omitempty"`
	Error      string `json:"error,omitempty"`
}

// IsSuccess reports whether rendering completed normally.
func (r Result) IsSuccess() bool {
	return r.Status == metrics.StatusSuccess
}

// Renderer produces chart results from query results. Like the executors, it
// never returns an error: rendering failures are captured into the result.
type Renderer struct {
	backend Backend
}

// NewRenderer builds a Renderer over the go-chart PNG backend.
func NewRenderer() *Renderer {
	return &Renderer{backend: PNGBackend{}}
}

// NewRendererWithBackend builds a Renderer over a custom backend.
func NewRendererWithBackend(b Backend) *Renderer {
	return &Renderer{backend: b}
}

// Render plots the query result. The explicit title overrides the query
// string; series with an empty scope are labeled with the query. A failed or
// empty query result yields an error without ever invoking the backend.
func (r *Renderer) Render(res metrics.QueryResult, title string, format Format) Result {
	if !res.IsSuccess() || len(res.Series) == 0 {
		return Result{
			Status: metrics.StatusError,
			Query:  res.Query,
			Error:  "no data available",
		}
	}

	if title == "" {
		title = res.Query
	}

	img, err := r.renderSafely(res.Series, res.Query, title)
	if err != nil {
		slog.Error("Failed to render chart", "query", res.Query, "err", err)
		return Result{
			Status: metrics.StatusError,
			Query:  res.Query,
			Error:  err.Error(),
		}
	}

	out := Result{
		Status:   metrics.StatusSuccess,
		Query:    res.Query,
		Format:   string(format),
		MIMEType: pngMIMEType,
	}
	if format == FormatBase64 {
		out.Image = base64.StdEncoding.EncodeToString(img)
	} else {
		out.Format = string(FormatPNG)
		out.ImageBytes = img
	}
	return out
}

// renderSafely shields callers from the plotting backend, which is not
// panic-free on degenerate input such as single-point series.
func (r *Renderer) renderSafely(series []metrics.Series, fallbackLabel, title string) (img []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("chart rendering failed: %v", rec)
		}
	}()
	return r.backend.Render(series, fallbackLabel, title)
}
