package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a process-local Limiter. Counters are lost on restart and
// are not shared between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore returns a limiter allowing limit requests per key every period.
func NewMemoryStore(limit int, period time.Duration) *MemoryStore {
	if limit <= 0 {
		limit = 1
	}
	if period <= 0 {
		period = time.Hour
	}
	return &MemoryStore{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow never returns an error.
func (m *MemoryStore) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune(now)

	w, ok := m.windows[key]
	if !ok {
		w = &window{resetAt: now.Add(m.period)}
		m.windows[key] = w
	}
	if w.count < int64(m.limit)+1 {
		w.count++
	}

	return decide(m.limit, w.count, w.resetAt.Sub(now)), nil
}

func (m *MemoryStore) prune(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
