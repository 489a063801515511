package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/config"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/datadog"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

// MockedLoader is a mock implementation of datadog.Loader for testing.
type MockedLoader struct {
	QueryTimeseriesFunc func(ctx context.Context, query string, from, to int64) (*datadog.TimeseriesResponse, error)
	SearchMetricsFunc   func(ctx context.Context, prefix string) (*datadog.SearchResponse, error)

	QueryCalls  int
	SearchCalls int
}

func (m *MockedLoader) QueryTimeseries(ctx context.Context, query string, from, to int64) (*datadog.TimeseriesResponse, error) {
	m.QueryCalls++
	if m.QueryTimeseriesFunc != nil {
		return m.QueryTimeseriesFunc(ctx, query, from, to)
	}
	return &datadog.TimeseriesResponse{}, nil
}

func (m *MockedLoader) SearchMetrics(ctx context.Context, prefix string) (*datadog.SearchResponse, error) {
	m.SearchCalls++
	if m.SearchMetricsFunc != nil {
		return m.SearchMetricsFunc(ctx, prefix)
	}
	return &datadog.SearchResponse{}, nil
}

var _ datadog.Loader = (*MockedLoader)(nil)

// MockedBackend is a mock chart backend for testing.
type MockedBackend struct{}

func (MockedBackend) Render(series []metrics.Series, fallbackLabel, title string) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func newTestServer(loader datadog.Loader, authToken string) *Server {
	d := dispatch.NewDispatcher(metrics.NewExecutor(loader), chart.NewRendererWithBackend(MockedBackend{}))
	return New(&config.Config{AuthToken: authToken}, d)
}

func oneSeriesLoader() *MockedLoader {
	return &MockedLoader{
		QueryTimeseriesFunc: func(ctx context.Context, query string, from, to int64) (*datadog.TimeseriesResponse, error) {
			return &datadog.TimeseriesResponse{
				Series: []datadog.RawSeries{
					{Scope: "host:a", Points: []any{[]float64{1000, 1}, []float64{2000, 2}}},
				},
			}, nil
		},
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "secret")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body is not JSON: %v", err)
	}
	if body["status"] != "healthy" || body["auth_required"] != true {
		t.Errorf("health body = %v, want healthy with auth_required true", body)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	loader := &MockedLoader{}
	srv := newTestServer(loader, "secret")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search_metrics?prefix=system", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if loader.SearchCalls != 0 {
		t.Error("rejected request must not reach the backend")
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	loader := &MockedLoader{}
	srv := newTestServer(loader, "secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search_metrics?prefix=system", nil)
	req.Header.Set("Authorization", "Bearer wrong")

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if loader.SearchCalls != 0 {
		t.Error("rejected request must not reach the backend")
	}
}

func TestAuth_ValidToken(t *testing.T) {
	loader := &MockedLoader{}
	srv := newTestServer(loader, "secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search_metrics?prefix=system", nil)
	req.Header.Set("Authorization", "Bearer secret")

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if loader.SearchCalls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.SearchCalls)
	}
}

func TestAuth_DisabledWhenUnconfigured(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search_metrics?prefix=system", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

func TestToolsCatalog(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Tools []toolCatalogEntry `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("catalog is not JSON: %v", err)
	}
	want := map[string]bool{
		dispatch.ToolQueryMetrics:  false,
		dispatch.ToolSearchMetrics: false,
		dispatch.ToolGetMetricTags: false,
		dispatch.ToolGenerateChart: false,
	}
	for _, entry := range body.Tools {
		want[entry.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("catalog is missing tool %s", name)
		}
	}
}

func TestQuerySync_Success(t *testing.T) {
	srv := newTestServer(oneSeriesLoader(), "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query_metrics?query=avg:system.cpu.user{*}&days_back=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var env dispatch.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not an envelope: %v", err)
	}
	if env.Status != metrics.StatusSuccess || env.Tool != dispatch.ToolQueryMetrics {
		t.Errorf("envelope = %+v, want success for query_metrics", env)
	}
}

func TestQuerySync_MissingParameter(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query_metrics", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if !strings.Contains(body["detail"], "query") {
		t.Errorf("detail = %q, want mention of the missing parameter", body["detail"])
	}
}

func TestCall_UnknownTool(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", strings.NewReader(`{"tool":"nope","parameters":{}}`))

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["detail"] != "Unknown tool: nope" {
		t.Errorf("detail = %q, want %q", body["detail"], "Unknown tool: nope")
	}
}

func TestCall_Success(t *testing.T) {
	srv := newTestServer(oneSeriesLoader(), "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call",
		strings.NewReader(`{"tool":"query_metrics","parameters":{"query":"avg:system.cpu.user{*}"}}`))

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestChart_PNGFormatReturnsRawBytes(t *testing.T) {
	srv := newTestServer(oneSeriesLoader(), "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate_metric_chart?query=avg:system.cpu.user{*}&format=png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body = %q, want the raw backend bytes", rec.Body.String())
	}
}

func TestChart_DefaultFormatIsJSON(t *testing.T) {
	srv := newTestServer(oneSeriesLoader(), "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate_metric_chart?query=avg:system.cpu.user{*}", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

// parseSSE splits an SSE body into its decoded event payloads.
func parseSSE(t *testing.T, body string) []dispatch.Event {
	t.Helper()
	var events []dispatch.Event
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		payload, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("frame without data prefix: %q", frame)
		}
		var e dispatch.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			t.Fatalf("frame payload is not JSON: %v", err)
		}
		events = append(events, e)
	}
	return events
}

func TestStream_SuccessSequence(t *testing.T) {
	srv := newTestServer(oneSeriesLoader(), "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query_metrics/stream?query=avg:system.cpu.user{*}", nil))

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", got)
	}
	events := parseSSE(t, rec.Body.String())
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	for i, want := range []string{dispatch.EventStart, dispatch.EventData, dispatch.EventComplete} {
		if events[i].Type != want {
			t.Errorf("event %d type = %q, want %q", i, events[i].Type, want)
		}
	}
}

func TestStream_ValidationErrorSequence(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query_metrics/stream", nil))

	events := parseSSE(t, rec.Body.String())
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Type != dispatch.EventStart || events[1].Type != dispatch.EventError {
		t.Errorf("sequence = [%s %s], want [start error]", events[0].Type, events[1].Type)
	}
	if events[1].Error == "" {
		t.Error("error event is missing its message")
	}
}

func TestCallStream_Success(t *testing.T) {
	srv := newTestServer(oneSeriesLoader(), "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call/stream",
		strings.NewReader(`{"tool":"search_metrics","parameters":{"prefix":"system"}}`))

	srv.Handler().ServeHTTP(rec, req)

	events := parseSSE(t, rec.Body.String())
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	// Only the start frame names the tool; the data frame carries the result.
	if events[0].Tool != dispatch.ToolSearchMetrics {
		t.Errorf("start event tool = %q, want search_metrics", events[0].Tool)
	}
	if events[1].Tool != "" {
		t.Errorf("data event tool = %q, want empty", events[1].Tool)
	}
}

func TestCall_MalformedBody(t *testing.T) {
	srv := newTestServer(&MockedLoader{}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", strings.NewReader("{not json"))

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
