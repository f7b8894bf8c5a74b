package benchmark

import (
	"context"
)

// Repository defines persistence operations for cost benchmarks
type Repository interface {
	// GetExact returns the benchmark matching the key in the given
	// year and quarter, or ErrNotFound
	GetExact(ctx context.Context, key Key, year, quarter int) (*Benchmark, error)

	// GetLatestInYear returns the most recent benchmark (highest
	// quarter) matching the key within the given year, or ErrNotFound
	GetLatestInYear(ctx context.Context, key Key, year int) (*Benchmark, error)

	// Upsert inserts the benchmark or overwrites the existing row for
	// the same (category, description, region, year, quarter)
	Upsert(ctx context.Context, b *Benchmark) error
}
