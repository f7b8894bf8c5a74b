package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"devwise/internal/domain/lineitem"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ lineitem.Repository = (*LineItemRepository)(nil)

// LineItemRepository implements lineitem.Repository using sqlx
type LineItemRepository struct {
	db DBTX
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db DBTX) *LineItemRepository {
	return &LineItemRepository{db: db}
}

const lineItemColumns = `
	id, proposal_id, user_id, party_id, location, category, description,
	unit, quantity, unit_price, total_price, research_job_id, market_avg,
	variance_percent, flag_color, last_researched_at, original_description,
	original_quantity, original_unit_price, original_total_price,
	is_edited, notes, created_at, updated_at`

// GetByIDForUser retrieves a line item owned by the user
func (r *LineItemRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*lineitem.LineItem, error) {
	query := `
		SELECT ` + lineItemColumns + `
		FROM line_items
		WHERE id = $1 AND user_id = $2`

	var li lineitem.LineItem
	err := r.db.GetContext(ctx, &li, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "line item not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get line item")
	}

	return &li, nil
}

// ListByProposal returns all line items of a proposal owned by the user
func (r *LineItemRepository) ListByProposal(ctx context.Context, proposalID, userID uuid.UUID) ([]*lineitem.LineItem, error) {
	query := `
		SELECT ` + lineItemColumns + `
		FROM line_items
		WHERE proposal_id = $1 AND user_id = $2
		ORDER BY created_at`

	var items []*lineitem.LineItem
	if err := r.db.SelectContext(ctx, &items, query, proposalID, userID); err != nil {
		return nil, errors.Wrap(err, "failed to list line items")
	}

	return items, nil
}

// InsertBatch inserts a set of extracted line items
func (r *LineItemRepository) InsertBatch(ctx context.Context, items []*lineitem.LineItem) error {
	query := `
		INSERT INTO line_items (
			id, proposal_id, user_id, party_id, location, category, description,
			unit, quantity, unit_price, total_price, is_edited, notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)`

	for _, li := range items {
		_, err := r.db.ExecContext(ctx, query,
			li.ID, li.ProposalID, li.UserID, li.PartyID, li.Location,
			li.Category, li.Description, li.Unit, li.Quantity, li.UnitPrice,
			li.TotalPrice, li.IsEdited, li.Notes, li.CreatedAt, li.UpdatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to insert line item")
		}
	}

	return nil
}

// Update persists user-editable fields
func (r *LineItemRepository) Update(ctx context.Context, li *lineitem.LineItem) error {
	query := `
		UPDATE line_items
		SET description = $3,
			category = $4,
			location = $5,
			unit = $6,
			quantity = $7,
			unit_price = $8,
			total_price = $9,
			notes = $10,
			original_description = $11,
			original_quantity = $12,
			original_unit_price = $13,
			original_total_price = $14,
			is_edited = $15,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		li.ID, li.UserID, li.Description, li.Category, li.Location,
		li.Unit, li.Quantity, li.UnitPrice, li.TotalPrice, li.Notes,
		li.OriginalDescription, li.OriginalQuantity, li.OriginalUnitPrice,
		li.OriginalTotalPrice, li.IsEdited,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update line item")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "line item not found")
	}

	return nil
}

// UpdateMarketFields persists the research-owned fields only
func (r *LineItemRepository) UpdateMarketFields(ctx context.Context, id uuid.UUID, f lineitem.MarketFields) error {
	query := `
		UPDATE line_items
		SET research_job_id = $2,
			market_avg = $3,
			variance_percent = $4,
			flag_color = $5,
			last_researched_at = $6,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id, f.ResearchJobID, f.MarketAvg, f.VariancePercent, f.FlagColor, f.ResearchedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update market fields")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "line item not found")
	}

	return nil
}
