package rating

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for research ratings
type Repository interface {
	// Insert stores a rating
	Insert(ctx context.Context, r *Rating) error

	// ListByLineItem returns the user's ratings for a line item,
	// newest first
	ListByLineItem(ctx context.Context, lineItemID, userID uuid.UUID) ([]*Rating, error)
}
