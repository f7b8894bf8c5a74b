package postgres

import (
	"context"

	"github.com/google/uuid"

	"devwise/internal/domain/rating"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ rating.Repository = (*RatingRepository)(nil)

// RatingRepository implements rating.Repository using sqlx
type RatingRepository struct {
	db DBTX
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

const ratingColumns = `
	id, user_id, line_item_id, research_job_id, rating, accuracy_feedback,
	actual_cost, comments, created_at`

// Insert stores a rating
func (r *RatingRepository) Insert(ctx context.Context, rt *rating.Rating) error {
	query := `
		INSERT INTO user_ratings (
			id, user_id, line_item_id, research_job_id, rating,
			accuracy_feedback, actual_cost, comments, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		rt.ID, rt.UserID, rt.LineItemID, rt.ResearchJobID, rt.Value,
		rt.AccuracyFeedback, rt.ActualCost, rt.Comments, rt.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert rating")
	}

	return nil
}

// ListByLineItem returns the user's ratings for a line item, newest first
func (r *RatingRepository) ListByLineItem(ctx context.Context, lineItemID, userID uuid.UUID) ([]*rating.Rating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM user_ratings
		WHERE line_item_id = $1 AND user_id = $2
		ORDER BY created_at DESC`

	var ratings []*rating.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, lineItemID, userID); err != nil {
		return nil, errors.Wrap(err, "failed to list ratings")
	}

	return ratings, nil
}
