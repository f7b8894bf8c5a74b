package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/domain/budget"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ budget.Repository = (*BudgetRepository)(nil)

// BudgetRepository implements budget.Repository using sqlx
type BudgetRepository struct {
	db DBTX
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db DBTX) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `
	user_id, daily_limit, daily_spent, monthly_limit, monthly_spent,
	last_reset_date, created_at, updated_at`

// GetByUser retrieves the budget row for a user
func (r *BudgetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*budget.UserBudget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM user_budgets
		WHERE user_id = $1`

	var b budget.UserBudget
	err := r.db.GetContext(ctx, &b, query, userID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "budget not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get budget")
	}

	return &b, nil
}

// Create inserts a new budget row
func (r *BudgetRepository) Create(ctx context.Context, b *budget.UserBudget) error {
	query := `
		INSERT INTO user_budgets (
			user_id, daily_limit, daily_spent, monthly_limit, monthly_spent,
			last_reset_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.ExecContext(ctx, query,
		b.UserID, b.DailyLimit, b.DailySpent, b.MonthlyLimit, b.MonthlySpent,
		b.LastResetDate, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create budget")
	}

	return nil
}

// ResetDaily zeroes daily_spent and stamps the reset date
func (r *BudgetRepository) ResetDaily(ctx context.Context, userID uuid.UUID, resetDate time.Time) error {
	query := `
		UPDATE user_budgets
		SET daily_spent = 0,
			last_reset_date = $2,
			updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, resetDate)
	if err != nil {
		return errors.Wrap(err, "failed to reset daily spend")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "budget not found")
	}

	return nil
}

// AddSpending adds the amount to both daily and monthly spend
func (r *BudgetRepository) AddSpending(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE user_budgets
		SET daily_spent = daily_spent + $2,
			monthly_spent = monthly_spent + $2,
			updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		return errors.Wrap(err, "failed to add spending")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "budget not found")
	}

	return nil
}

// UpdateLimits replaces the provided limits and returns the updated row.
// A nil limit keeps the current value.
func (r *BudgetRepository) UpdateLimits(ctx context.Context, userID uuid.UUID, daily, monthly *decimal.Decimal) (*budget.UserBudget, error) {
	query := `
		UPDATE user_budgets
		SET daily_limit = COALESCE($2, daily_limit),
			monthly_limit = COALESCE($3, monthly_limit),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + budgetColumns

	var b budget.UserBudget
	err := r.db.GetContext(ctx, &b, query, userID, daily, monthly)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "budget not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to update limits")
	}

	return &b, nil
}
