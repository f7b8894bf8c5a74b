package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/domain/budget"
	"devwise/internal/metrics"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

// Operation cost estimates used for pre-checks. Actual metered cost is
// recorded after the call completes.
var (
	EstimateResearch = decimal.NewFromFloat(0.35)
	EstimateChat     = decimal.NewFromFloat(0.15)
)

// Service enforces per-user spending limits on paid API operations
type Service struct {
	repository budget.Repository
	log        *logger.Logger
}

// NewService creates a new budget service
func NewService(repository budget.Repository, log *logger.Logger) *Service {
	return &Service{
		repository: repository,
		log:        log,
	}
}

// Check verifies the estimated cost fits within the user's daily and
// monthly limits. The budget row is created lazily with defaults, and
// daily spend is reset first when the calendar day has rolled over.
func (s *Service) Check(ctx context.Context, userID uuid.UUID, estimated decimal.Decimal) (*budget.CheckResult, error) {
	b, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if b.NeedsDailyReset(now) {
		resetDate := budget.DateOnly(now)
		if err := s.repository.ResetDaily(ctx, userID, resetDate); err != nil {
			return nil, errors.Wrap(err, "failed to reset daily spend")
		}
		b.DailySpent = decimal.Zero
		b.LastResetDate = resetDate

		s.log.Debugw("Daily budget reset", "user_id", userID)
	}

	result := &budget.CheckResult{
		Allowed:      true,
		DailySpent:   b.DailySpent,
		DailyLimit:   b.DailyLimit,
		MonthlySpent: b.MonthlySpent,
		MonthlyLimit: b.MonthlyLimit,
	}

	if b.DailySpent.Add(estimated).GreaterThan(b.DailyLimit) {
		result.Allowed = false
		result.Reason = fmt.Sprintf("daily budget limit of $%s reached ($%s spent today)",
			b.DailyLimit.StringFixed(2), b.DailySpent.StringFixed(2))
		metrics.BudgetDenials.WithLabelValues("daily").Inc()

		s.log.Infow("Operation denied by daily budget",
			"user_id", userID,
			"daily_spent", b.DailySpent,
			"daily_limit", b.DailyLimit,
			"estimated", estimated,
		)
		return result, nil
	}

	if b.MonthlySpent.Add(estimated).GreaterThan(b.MonthlyLimit) {
		result.Allowed = false
		result.Reason = fmt.Sprintf("monthly budget limit of $%s reached ($%s spent this month)",
			b.MonthlyLimit.StringFixed(2), b.MonthlySpent.StringFixed(2))
		metrics.BudgetDenials.WithLabelValues("monthly").Inc()

		s.log.Infow("Operation denied by monthly budget",
			"user_id", userID,
			"monthly_spent", b.MonthlySpent,
			"monthly_limit", b.MonthlyLimit,
			"estimated", estimated,
		)
		return result, nil
	}

	return result, nil
}

// RecordSpending adds the actual metered cost to the user's daily and
// monthly counters
func (s *Service) RecordSpending(ctx context.Context, userID uuid.UUID, actual decimal.Decimal) error {
	if actual.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	if _, err := s.getOrCreate(ctx, userID); err != nil {
		return err
	}

	if err := s.repository.AddSpending(ctx, userID, actual); err != nil {
		return errors.Wrap(err, "failed to record spending")
	}

	cost, _ := actual.Float64()
	s.log.Debugw("Spending recorded",
		"user_id", userID,
		"amount", humanize.FormatFloat("#,###.####", cost),
	)

	return nil
}

// Summary returns the user's current spend against limits. A pending
// daily rollover is reflected in the numbers without being persisted;
// the next Check writes it.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*budget.Summary, error) {
	b, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if b.NeedsDailyReset(time.Now()) {
		b.DailySpent = decimal.Zero
	}

	return &budget.Summary{
		DailySpent:       b.DailySpent,
		DailyLimit:       b.DailyLimit,
		DailyRemaining:   decimal.Max(decimal.Zero, b.DailyLimit.Sub(b.DailySpent)),
		MonthlySpent:     b.MonthlySpent,
		MonthlyLimit:     b.MonthlyLimit,
		MonthlyRemaining: decimal.Max(decimal.Zero, b.MonthlyLimit.Sub(b.MonthlySpent)),
	}, nil
}

// UpdateLimits replaces the user's limits. Nil keeps the current value,
// negative values are clamped to zero, spend counters are never touched.
func (s *Service) UpdateLimits(ctx context.Context, userID uuid.UUID, daily, monthly *decimal.Decimal) (*budget.UserBudget, error) {
	if daily != nil && daily.IsNegative() {
		clamped := decimal.Zero
		daily = &clamped
	}
	if monthly != nil && monthly.IsNegative() {
		clamped := decimal.Zero
		monthly = &clamped
	}

	if _, err := s.getOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	b, err := s.repository.UpdateLimits(ctx, userID, daily, monthly)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update limits")
	}

	s.log.Infow("Budget limits updated",
		"user_id", userID,
		"daily_limit", b.DailyLimit,
		"monthly_limit", b.MonthlyLimit,
	)

	return b, nil
}

func (s *Service) getOrCreate(ctx context.Context, userID uuid.UUID) (*budget.UserBudget, error) {
	b, err := s.repository.GetByUser(ctx, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to get budget")
	}

	b = budget.NewUserBudget(userID, time.Now())
	if err := s.repository.Create(ctx, b); err != nil {
		return nil, errors.Wrap(err, "failed to create budget")
	}

	s.log.Debugw("Budget created with defaults", "user_id", userID)

	return b, nil
}
