package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/lucera/minicheck/internal/platform/errs"
	"github.com/lucera/minicheck/internal/platform/reqctx"
	"github.com/lucera/minicheck/internal/platform/respond"
	"github.com/lucera/minicheck/internal/ratelimit"
)

const rateLimitedMessage = "Too many requests. Please try again later."

// RateRecorder receives rate limit decisions.
type RateRecorder interface {
	RecordRateLimit(allowed bool, err error)
}

// RateLimit rejects callers that exceeded their budget with 429. The caller
// is identified by reqctx.Client, so ClientIdentity must run first. If the
// limiter fails the request is let through.
func RateLimit(limiter ratelimit.Limiter, rec RateRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := reqctx.Client(r.Context())

			d, err := limiter.Allow(r.Context(), client)
			rec.RecordRateLimit(d.Allowed, err)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request",
					"client", client,
					"request_id", reqctx.RequestID(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				logger.Info("rate limit exceeded", "client", client, "request_id", reqctx.RequestID(r.Context()))

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				respond.Error(w, logger, errs.New(errs.RateLimited, rateLimitedMessage, ratelimit.ErrLimitExceeded))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
