package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for proposals
type Repository interface {
	// Create inserts a new proposal
	Create(ctx context.Context, p *Proposal) error

	// GetByIDForUser returns the proposal if owned by the user, or ErrNotFound
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Proposal, error)

	// MarkProcessing sets extraction_status=processing with a start time
	MarkProcessing(ctx context.Context, id uuid.UUID, startedAt time.Time) error

	// MarkCompleted sets extraction_status=completed with the extracted
	// total amount, resolved contractor party and completion time
	MarkCompleted(ctx context.Context, id uuid.UUID, totalAmount float64, partyID uuid.UUID, completedAt time.Time) error

	// MarkFailed sets extraction_status=failed
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// FailStale transitions processing proposals whose extraction started
	// before the deadline to failed, returning affected rows
	FailStale(ctx context.Context, olderThan time.Time) (int64, error)
}
