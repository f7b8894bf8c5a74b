package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines operations for the append-only API usage log
type Repository interface {
	// Insert saves a usage entry. Entries are never updated or deleted.
	Insert(ctx context.Context, e *Entry) error

	// CountByUserAndOperation counts usage rows for one operation type
	CountByUserAndOperation(ctx context.Context, userID uuid.UUID, op OperationType) (int, error)

	// ListRecentByUser returns the newest entries for a user
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Entry, error)

	// SumByOperationSince aggregates count and cost per operation type
	// for entries created at or after the given time
	SumByOperationSince(ctx context.Context, userID uuid.UUID, since time.Time) (map[OperationType]OperationStats, error)
}
