package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default limits applied when a budget row is lazily created
var (
	DefaultDailyLimit   = decimal.NewFromFloat(20.00)
	DefaultMonthlyLimit = decimal.NewFromFloat(100.00)
)

// UserBudget tracks per-user daily and monthly API spending against soft
// limits. One row per user. daily_spent resets on first access after a
// calendar-day rollover; limits are advisory ceilings enforced at call time.
type UserBudget struct {
	UserID        uuid.UUID       `db:"user_id"`
	DailyLimit    decimal.Decimal `db:"daily_limit"`
	DailySpent    decimal.Decimal `db:"daily_spent"`
	MonthlyLimit  decimal.Decimal `db:"monthly_limit"`
	MonthlySpent  decimal.Decimal `db:"monthly_spent"`
	LastResetDate time.Time       `db:"last_reset_date"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// NewUserBudget creates a budget row with default limits
func NewUserBudget(userID uuid.UUID, now time.Time) *UserBudget {
	return &UserBudget{
		UserID:        userID,
		DailyLimit:    DefaultDailyLimit,
		DailySpent:    decimal.Zero,
		MonthlyLimit:  DefaultMonthlyLimit,
		MonthlySpent:  decimal.Zero,
		LastResetDate: DateOnly(now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NeedsDailyReset reports whether the calendar day has rolled over since
// the last reset
func (b *UserBudget) NeedsDailyReset(now time.Time) bool {
	return !b.LastResetDate.Equal(DateOnly(now))
}

// DateOnly truncates a timestamp to midnight UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckResult is the outcome of a budget pre-check
type CheckResult struct {
	Allowed      bool
	Reason       string
	DailySpent   decimal.Decimal
	DailyLimit   decimal.Decimal
	MonthlySpent decimal.Decimal
	MonthlyLimit decimal.Decimal
}

// Summary is the user-facing spend overview
type Summary struct {
	DailySpent       decimal.Decimal
	DailyLimit       decimal.Decimal
	DailyRemaining   decimal.Decimal
	MonthlySpent     decimal.Decimal
	MonthlyLimit     decimal.Decimal
	MonthlyRemaining decimal.Decimal
}
