package ratelimit

import (
	"context"
	"sync"
	"time"

	"devwise/pkg/logger"
)

// gcInterval controls how often expired windows are swept
const gcInterval = 5 * time.Minute

// Compile-time check
var _ Limiter = (*MemoryLimiter)(nil)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window limiter. Suitable for a
// single service instance; use the Redis backend when running more.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	log     *logger.Logger
	stop    chan struct{}
}

// NewMemoryLimiter creates an in-process limiter and starts its sweeper
func NewMemoryLimiter(log *logger.Logger) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		log:     log,
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow consumes one unit of quota within the current window
func (l *MemoryLimiter) Allow(_ context.Context, identifier string, limit int, windowSize time.Duration) (*Result, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identifier]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(windowSize)}
		l.windows[identifier] = w
	}

	if w.count >= limit {
		return &Result{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   w.resetAt,
		}, nil
	}

	w.count++

	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - w.count,
		ResetAt:   w.resetAt,
	}, nil
}

// Close stops the background sweeper
func (l *MemoryLimiter) Close() {
	close(l.stop)
}

func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()

			l.mu.Lock()
			removed := 0
			for key, w := range l.windows {
				if now.After(w.resetAt) {
					delete(l.windows, key)
					removed++
				}
			}
			l.mu.Unlock()

			if removed > 0 {
				l.log.Debugw("Swept expired rate limit windows", "removed", removed)
			}
		}
	}
}
