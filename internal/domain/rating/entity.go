package rating

import (
	"time"

	"github.com/google/uuid"

	"devwise/pkg/errors"
)

// Rating is user feedback on the accuracy of a research result, on a
// 1 to 5 scale. An actual_cost turns the feedback into a benchmark.
type Rating struct {
	ID               uuid.UUID  `db:"id"`
	UserID           uuid.UUID  `db:"user_id"`
	LineItemID       uuid.UUID  `db:"line_item_id"`
	ResearchJobID    *uuid.UUID `db:"research_job_id"`
	Value            int        `db:"rating"`
	AccuracyFeedback *string    `db:"accuracy_feedback"`
	ActualCost       *float64   `db:"actual_cost"`
	Comments         *string    `db:"comments"`
	CreatedAt        time.Time  `db:"created_at"`
}

// Validate checks the rating value range
func (r *Rating) Validate() error {
	if r.Value < 1 || r.Value > 5 {
		return errors.NewValidationError("rating", "must be between 1 and 5", r.Value)
	}
	return nil
}

// Confidence converts the rating into a benchmark confidence score
func (r *Rating) Confidence() float64 {
	return float64(r.Value) / 5
}
