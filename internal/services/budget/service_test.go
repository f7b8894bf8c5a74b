package budget

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devwise/internal/domain/budget"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

// MockBudgetRepository is a mock for budget.Repository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*budget.UserBudget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.UserBudget), args.Error(1)
}

func (m *MockBudgetRepository) Create(ctx context.Context, b *budget.UserBudget) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBudgetRepository) ResetDaily(ctx context.Context, userID uuid.UUID, resetDate time.Time) error {
	args := m.Called(ctx, userID, resetDate)
	return args.Error(0)
}

func (m *MockBudgetRepository) AddSpending(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateLimits(ctx context.Context, userID uuid.UUID, daily, monthly *decimal.Decimal) (*budget.UserBudget, error) {
	args := m.Called(ctx, userID, daily, monthly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.UserBudget), args.Error(1)
}

func currentBudget(userID uuid.UUID, dailySpent, monthlySpent float64) *budget.UserBudget {
	b := budget.NewUserBudget(userID, time.Now())
	b.DailySpent = decimal.NewFromFloat(dailySpent)
	b.MonthlySpent = decimal.NewFromFloat(monthlySpent)
	return b
}

func TestService_Check_Allowed(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetByUser", ctx, userID).Return(currentBudget(userID, 19.00, 50.00), nil)

	result, err := service.Check(ctx, userID, decimal.NewFromFloat(0.5))

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Reason)
	mockRepo.AssertNotCalled(t, "ResetDaily", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Check_DailyLimitDenied(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetByUser", ctx, userID).Return(currentBudget(userID, 19.00, 50.00), nil)

	result, err := service.Check(ctx, userID, decimal.NewFromFloat(1.5))

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, "daily budget limit of $20.00 reached ($19.00 spent today)", result.Reason)
}

func TestService_Check_MonthlyLimitDenied(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	// Daily has room, monthly does not
	mockRepo.On("GetByUser", ctx, userID).Return(currentBudget(userID, 1.00, 99.90), nil)

	result, err := service.Check(ctx, userID, decimal.NewFromFloat(0.35))

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, "monthly budget limit of $100.00 reached ($99.90 spent this month)", result.Reason)
}

func TestService_Check_DailyRolloverPersisted(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	b := currentBudget(userID, 19.99, 50.00)
	b.LastResetDate = budget.DateOnly(time.Now().AddDate(0, 0, -1))

	mockRepo.On("GetByUser", ctx, userID).Return(b, nil)
	mockRepo.On("ResetDaily", ctx, userID, budget.DateOnly(time.Now())).Return(nil)

	result, err := service.Check(ctx, userID, decimal.NewFromFloat(0.35))

	require.NoError(t, err)
	assert.True(t, result.Allowed, "yesterday's spend must not count today")
	assert.True(t, result.DailySpent.IsZero())
	assert.True(t, result.MonthlySpent.Equal(decimal.NewFromFloat(50.00)),
		"monthly spend survives the daily reset")
	mockRepo.AssertExpectations(t)
}

func TestService_Check_CreatesBudgetLazily(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetByUser", ctx, userID).Return(nil, errors.ErrNotFound)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*budget.UserBudget")).Return(nil)

	result, err := service.Check(ctx, userID, EstimateResearch)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.True(t, result.DailyLimit.Equal(budget.DefaultDailyLimit))
	assert.True(t, result.MonthlyLimit.Equal(budget.DefaultMonthlyLimit))
	mockRepo.AssertExpectations(t)
}

func TestService_RecordSpending(t *testing.T) {
	t.Run("positive amount recorded", func(t *testing.T) {
		mockRepo := new(MockBudgetRepository)
		service := NewService(mockRepo, logger.Get())

		ctx := context.Background()
		userID := uuid.New()
		amount := decimal.NewFromFloat(0.42)

		mockRepo.On("GetByUser", ctx, userID).Return(currentBudget(userID, 0, 0), nil)
		mockRepo.On("AddSpending", ctx, userID, amount).Return(nil)

		require.NoError(t, service.RecordSpending(ctx, userID, amount))
		mockRepo.AssertExpectations(t)
	})

	t.Run("zero amount is a no-op", func(t *testing.T) {
		mockRepo := new(MockBudgetRepository)
		service := NewService(mockRepo, logger.Get())

		require.NoError(t, service.RecordSpending(context.Background(), uuid.New(), decimal.Zero))
		mockRepo.AssertNotCalled(t, "AddSpending", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Summary_RolloverNotPersisted(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	b := currentBudget(userID, 12.00, 60.00)
	b.LastResetDate = budget.DateOnly(time.Now().AddDate(0, 0, -1))

	mockRepo.On("GetByUser", ctx, userID).Return(b, nil)

	summary, err := service.Summary(ctx, userID)

	require.NoError(t, err)
	assert.True(t, summary.DailySpent.IsZero(), "pending rollover shows as zero")
	assert.True(t, summary.DailyRemaining.Equal(budget.DefaultDailyLimit))
	assert.True(t, summary.MonthlySpent.Equal(decimal.NewFromFloat(60.00)))
	mockRepo.AssertNotCalled(t, "ResetDaily", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateLimits_ClampsNegatives(t *testing.T) {
	mockRepo := new(MockBudgetRepository)
	service := NewService(mockRepo, logger.Get())

	ctx := context.Background()
	userID := uuid.New()

	updated := currentBudget(userID, 0, 0)
	updated.DailyLimit = decimal.Zero

	mockRepo.On("GetByUser", ctx, userID).Return(currentBudget(userID, 0, 0), nil)
	mockRepo.On("UpdateLimits", ctx, userID,
		mock.MatchedBy(func(d *decimal.Decimal) bool { return d != nil && d.IsZero() }),
		(*decimal.Decimal)(nil),
	).Return(updated, nil)

	negative := decimal.NewFromFloat(-5)
	b, err := service.UpdateLimits(ctx, userID, &negative, nil)

	require.NoError(t, err)
	assert.True(t, b.DailyLimit.IsZero())
	mockRepo.AssertExpectations(t)
}
