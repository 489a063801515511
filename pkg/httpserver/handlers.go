package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mirrors the {"detail": ...} error body HTTP clients of the
// original service expect.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"service":       serviceName,
		"version":       serviceVersion,
		"auth_required": s.authToken != "",
	})
}

// toolCatalogEntry describes one tool in the static /tools catalog.
type toolCatalogEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": []toolCatalogEntry{
			{
				Name:        dispatch.ToolQueryMetrics,
				Description: "Query Datadog metrics with time-series data",
				Parameters: map[string]any{
					"query":     map[string]string{"type": "string", "description": "Datadog metric query"},
					"days_back": map[string]string{"type": "integer", "description": "Days to look back (default: 7)"},
				},
			},
			{
				Name:        dispatch.ToolSearchMetrics,
				Description: "Search for available metrics by prefix",
				Parameters: map[string]any{
					"prefix": map[string]string{"type": "string", "description": "Metric prefix to search"},
				},
			},
			{
				Name:        dispatch.ToolGetMetricTags,
				Description: "Get tag information for a metric",
				Parameters: map[string]any{
					"metric_name": map[string]string{"type": "string", "description": "Full metric name"},
				},
			},
			{
				Name:        dispatch.ToolGenerateChart,
				Description: "Generate a PNG chart for a metric query",
				Parameters: map[string]any{
					"query":     map[string]string{"type": "string", "description": "Datadog metric query"},
					"days_back": map[string]string{"type": "integer", "description": "Days to look back (default: 7)"},
					"title":     map[string]string{"type": "string", "description": "Chart title (optional)"},
					"format":    map[string]string{"type": "string", "description": "png for raw image bytes, base64 for JSON (default)"},
				},
			},
		},
	})
}

// queryParameters lifts the query string into a parameter bag. Values stay as
// strings; the dispatcher owns type conversion and defaulting.
func queryParameters(r *http.Request) map[string]any {
	params := map[string]any{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// handleToolSync serves GET /<tool>: one invocation, one JSON document.
// A chart requested with format=png is the exception: its image bytes go out
// raw instead of wrapped in an envelope.
func (s *Server) handleToolSync(tool string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondSync(w, r, dispatch.Invocation{
			Tool:       tool,
			Parameters: queryParameters(r),
		})
	}
}

func (s *Server) respondSync(w http.ResponseWriter, r *http.Request, inv dispatch.Invocation) {
	out := s.dispatcher.Dispatch(r.Context(), inv)

	if res, ok := out.Result.(chart.Result); ok && res.IsSuccess() && res.Format == string(chart.FormatPNG) {
		w.Header().Set("Content-Type", res.MIMEType)
		_, _ = w.Write(res.ImageBytes)
		return
	}

	env, err := dispatch.FrameSync(out)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// handleToolStream serves GET /<tool>/stream as SSE.
func (s *Server) handleToolStream(tool string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondStream(w, r, dispatch.Invocation{
			Tool:       tool,
			Parameters: queryParameters(r),
		})
	}
}

// handleCall serves POST /call: generic dispatch of {"tool", "parameters"}.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	inv, ok := decodeInvocation(w, r)
	if !ok {
		return
	}
	s.respondSync(w, r, inv)
}

// handleCallStream serves POST /call/stream.
func (s *Server) handleCallStream(w http.ResponseWriter, r *http.Request) {
	inv, ok := decodeInvocation(w, r)
	if !ok {
		return
	}
	s.respondStream(w, r, inv)
}

func decodeInvocation(w http.ResponseWriter, r *http.Request) (dispatch.Invocation, bool) {
	var inv dispatch.Invocation
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return dispatch.Invocation{}, false
	}
	if inv.Parameters == nil {
		inv.Parameters = map[string]any{}
	}
	return inv, true
}
