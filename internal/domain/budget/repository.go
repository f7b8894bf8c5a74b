package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines persistence operations for user budgets
type Repository interface {
	// GetByUser returns the user's budget row, or ErrNotFound
	GetByUser(ctx context.Context, userID uuid.UUID) (*UserBudget, error)

	// Create inserts a new budget row
	Create(ctx context.Context, b *UserBudget) error

	// ResetDaily zeroes daily_spent and stamps last_reset_date
	ResetDaily(ctx context.Context, userID uuid.UUID, resetDate time.Time) error

	// AddSpending adds the amount to both daily and monthly spend
	AddSpending(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	// UpdateLimits replaces the provided limits, leaving spend counters
	// untouched. Nil means keep the current value.
	UpdateLimits(ctx context.Context, userID uuid.UUID, daily, monthly *decimal.Decimal) (*UserBudget, error)
}
