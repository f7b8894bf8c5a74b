package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a rate limit check. Header values are derived
// from it regardless of outcome.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter enforces fixed-window quotas keyed by an opaque identifier
// such as "extract:<user>". Backends are interchangeable: in-process
// for a single instance, Redis when state must be shared.
type Limiter interface {
	// Allow consumes one unit of quota for the identifier within the
	// current window
	Allow(ctx context.Context, identifier string, limit int, window time.Duration) (*Result, error)
}
