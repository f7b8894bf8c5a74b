package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/domain/usage"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ usage.Repository = (*UsageRepository)(nil)

// UsageRepository implements usage.Repository using sqlx
type UsageRepository struct {
	db DBTX
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

// Insert saves a usage entry
func (r *UsageRepository) Insert(ctx context.Context, e *usage.Entry) error {
	requestJSON, err := json.Marshal(e.RequestData)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request data")
	}
	responseJSON, err := json.Marshal(e.ResponseData)
	if err != nil {
		return errors.Wrap(err, "failed to marshal response data")
	}

	query := `
		INSERT INTO api_usage (
			id, user_id, operation_type, api_provider, tokens_used,
			estimated_cost, proposal_id, line_item_id, request_data,
			response_data, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Operation, e.Provider, e.TokensUsed,
		e.Cost, e.ProposalID, e.LineItemID, requestJSON,
		responseJSON, e.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert usage entry")
	}

	return nil
}

// CountByUserAndOperation counts usage rows for one operation type
func (r *UsageRepository) CountByUserAndOperation(ctx context.Context, userID uuid.UUID, op usage.OperationType) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM api_usage
		WHERE user_id = $1 AND operation_type = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, op); err != nil {
		return 0, errors.Wrap(err, "failed to count usage")
	}

	return count, nil
}

// ListRecentByUser returns the newest entries for a user
func (r *UsageRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*usage.Entry, error) {
	query := `
		SELECT id, user_id, operation_type, api_provider, tokens_used,
			   estimated_cost, proposal_id, line_item_id, created_at
		FROM api_usage
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var entries []*usage.Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list usage entries")
	}

	return entries, nil
}

// SumByOperationSince aggregates count and cost per operation type
func (r *UsageRepository) SumByOperationSince(ctx context.Context, userID uuid.UUID, since time.Time) (map[usage.OperationType]usage.OperationStats, error) {
	query := `
		SELECT operation_type, COUNT(*) AS count, COALESCE(SUM(estimated_cost), 0) AS cost
		FROM api_usage
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY operation_type`

	var rows []struct {
		Operation usage.OperationType `db:"operation_type"`
		Count     int                 `db:"count"`
		Cost      decimal.Decimal     `db:"cost"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID, since); err != nil {
		return nil, errors.Wrap(err, "failed to aggregate usage")
	}

	stats := make(map[usage.OperationType]usage.OperationStats, len(rows))
	for _, row := range rows {
		stats[row.Operation] = usage.OperationStats{
			Count: row.Count,
			Cost:  row.Cost,
		}
	}

	return stats, nil
}
