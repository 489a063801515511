package httpserver

import (
	"log/slog"
	"net/http"
	"strings"
)

// authMiddleware enforces the optional shared bearer token on every endpoint
// except /health. With no token configured the gate is disabled entirely;
// that is the documented insecure default for local use.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" || r.URL.Path == healthEndpoint {
			next.ServeHTTP(w, r)
			return
		}

		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		if token != s.authToken {
			slog.Warn("Rejected request with invalid token", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
