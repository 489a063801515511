package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
)

// respondStream emits the invocation's event sequence as Server-Sent Events.
// Each event is one self-contained `data: <json>` frame. If the client
// disconnects mid-stream the sink fails and no further events are written;
// the request context cancellation also aborts the in-flight backend call.
func (s *Server) respondStream(w http.ResponseWriter, r *http.Request, inv dispatch.Invocation) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := func(e dispatch.Event) error {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	dispatch.Stream(r.Context(), s.dispatcher, inv, sink)
}
