package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lucera/minicheck/internal/platform/reqctx"
)

const requestIDHeader = "X-Request-ID"

// RequestID is middleware that assigns a unique request ID to each request.
// An incoming X-Request-ID header is reused; otherwise a new UUID v4 is
// generated. The ID is echoed back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
	})
}
