package lineitem

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for line items
type Repository interface {
	// GetByIDForUser returns the line item if owned by the user, or ErrNotFound
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*LineItem, error)

	// ListByProposal returns all line items of a proposal owned by the user
	ListByProposal(ctx context.Context, proposalID, userID uuid.UUID) ([]*LineItem, error)

	// InsertBatch inserts a set of extracted line items
	InsertBatch(ctx context.Context, items []*LineItem) error

	// Update persists user-editable fields
	Update(ctx context.Context, li *LineItem) error

	// UpdateMarketFields persists the research-owned fields only
	UpdateMarketFields(ctx context.Context, id uuid.UUID, f MarketFields) error
}
