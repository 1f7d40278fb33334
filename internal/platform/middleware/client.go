package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/lucera/minicheck/internal/platform/reqctx"
)

// ClientIdentity stores the caller's address in the request context. When
// trustForwarded is set, the first X-Forwarded-For entry wins over the
// connection's remote address.
func ClientIdentity(trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := reqctx.WithClient(r.Context(), clientAddr(r, trustForwarded))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientAddr(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
