package web

import (
	"encoding/json"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pbxtools/pbxray/internal/logging"
)

// errorResponse is the JSON envelope for error replies.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	reqID := chimw.GetReqID(r.Context())
	if status >= 500 {
		logging.FromContext(r.Context()).Error("request failed",
			"status", status,
			"error", msg,
			"path", r.URL.Path,
		)
		msg = sanitizeErrorMessage(msg)
	}
	writeJSON(w, r, status, errorResponse{Error: msg, RequestID: reqID})
}

// sanitizeErrorMessage strips internal detail from messages shown to
// clients. Database errors can leak connection strings or SQL, so
// anything that looks like it came from the storage layer is replaced
// with a generic message.
func sanitizeErrorMessage(msg string) string {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"sqlstate", "postgres", "connection", "dial", "copy "} {
		if strings.Contains(lower, marker) {
			return "internal storage error"
		}
	}
	if len(msg) > 200 {
		return msg[:200]
	}
	return msg
}
