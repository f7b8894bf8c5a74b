package research

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for research jobs
type Repository interface {
	// Create inserts a new job (typically in processing state)
	Create(ctx context.Context, j *Job) error

	// GetByID returns the job, or ErrNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// Complete marks the job completed and persists its market figures
	Complete(ctx context.Context, j *Job) error

	// Fail transitions the job to failed with an error message
	Fail(ctx context.Context, id uuid.UUID, message string) error

	// CountByUser returns the total number of research jobs for a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// FailStale transitions processing jobs created before the deadline
	// to failed, returning how many rows were affected
	FailStale(ctx context.Context, olderThan time.Time) (int64, error)
}
