package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"supportdesk/internal/logging"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an id, reusing a well-formed inbound one,
// and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
