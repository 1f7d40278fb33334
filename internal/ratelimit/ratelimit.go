// Package ratelimit implements per-client fixed-window request limits.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded is the cause attached to rejections.
var ErrLimitExceeded = errors.New("ratelimit: limit exceeded")

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the time left until the current window resets.
	RetryAfter time.Duration
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(limit int, count int64, retryAfter time.Duration) Decision {
	return Decision{
		Allowed:    count <= int64(limit),
		Limit:      limit,
		Remaining:  max(0, limit-int(count)),
		RetryAfter: max(0, retryAfter),
	}
}
