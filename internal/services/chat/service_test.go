package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devwise/internal/adapters/config"
	"devwise/internal/domain/benchmark"
	budgetdomain "devwise/internal/domain/budget"
	chatdomain "devwise/internal/domain/chat"
	"devwise/internal/domain/lineitem"
	"devwise/internal/domain/party"
	"devwise/internal/domain/project"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/research"
	"devwise/internal/domain/usage"
	budgetsvc "devwise/internal/services/budget"
	usagesvc "devwise/internal/services/usage"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

// MockLineItemRepository is a mock for lineitem.Repository
type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*lineitem.LineItem, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lineitem.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) ListByProposal(ctx context.Context, proposalID, userID uuid.UUID) ([]*lineitem.LineItem, error) {
	args := m.Called(ctx, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lineitem.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) InsertBatch(ctx context.Context, items []*lineitem.LineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockLineItemRepository) Update(ctx context.Context, li *lineitem.LineItem) error {
	args := m.Called(ctx, li)
	return args.Error(0)
}

func (m *MockLineItemRepository) UpdateMarketFields(ctx context.Context, id uuid.UUID, f lineitem.MarketFields) error {
	args := m.Called(ctx, id, f)
	return args.Error(0)
}

// MockProposalRepository is a mock for proposal.Repository
type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProposalRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*proposal.Proposal, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proposal.Proposal), args.Error(1)
}

func (m *MockProposalRepository) MarkProcessing(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	args := m.Called(ctx, id, startedAt)
	return args.Error(0)
}

func (m *MockProposalRepository) MarkCompleted(ctx context.Context, id uuid.UUID, totalAmount float64, partyID uuid.UUID, completedAt time.Time) error {
	args := m.Called(ctx, id, totalAmount, partyID, completedAt)
	return args.Error(0)
}

func (m *MockProposalRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProposalRepository) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockProjectRepository is a mock for project.Repository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

// MockPartyRepository is a mock for party.Repository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindOrCreate(ctx context.Context, userID, projectID uuid.UUID, name string, partyType party.Type) (*party.Party, error) {
	args := m.Called(ctx, userID, projectID, name, partyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

// MockResearchRepository is a mock for research.Repository
type MockResearchRepository struct {
	mock.Mock
}

func (m *MockResearchRepository) Create(ctx context.Context, j *research.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockResearchRepository) GetByID(ctx context.Context, id uuid.UUID) (*research.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*research.Job), args.Error(1)
}

func (m *MockResearchRepository) Complete(ctx context.Context, j *research.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockResearchRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockResearchRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockResearchRepository) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockChatRepository is a mock for chat.Repository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Insert(ctx context.Context, msg *chatdomain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) ListThread(ctx context.Context, userID uuid.UUID, t chatdomain.Thread, limit int) ([]*chatdomain.Message, error) {
	args := m.Called(ctx, userID, t, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chatdomain.Message), args.Error(1)
}

// MockBudgetRepository is a mock for budget.Repository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*budgetdomain.UserBudget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budgetdomain.UserBudget), args.Error(1)
}

func (m *MockBudgetRepository) Create(ctx context.Context, b *budgetdomain.UserBudget) error {
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

func (m *MockBudgetRepository) UpdateLimits(ctx context.Context, userID uuid.UUID, daily, monthly *decimal.Decimal) (*budgetdomain.UserBudget, error) {
	args := m.Called(ctx, userID, daily, monthly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budgetdomain.UserBudget), args.Error(1)
}

// MockUsageRepository is a mock for usage.Repository
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) Insert(ctx context.Context, e *usage.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockUsageRepository) CountByUserAndOperation(ctx context.Context, userID uuid.UUID, op usage.OperationType) (int, error) {
	args := m.Called(ctx, userID, op)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*usage.Entry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*usage.Entry), args.Error(1)
}

func (m *MockUsageRepository) SumByOperationSince(ctx context.Context, userID uuid.UUID, since time.Time) (map[usage.OperationType]usage.OperationStats, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[usage.OperationType]usage.OperationStats), args.Error(1)
}

type chatFixture struct {
	lineItems *MockLineItemRepository
	proposals *MockProposalRepository
	projects  *MockProjectRepository
	parties   *MockPartyRepository
	jobs      *MockResearchRepository
	messages  *MockChatRepository
	budgets   *MockBudgetRepository
	service   *Service
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		lineItems: new(MockLineItemRepository),
		proposals: new(MockProposalRepository),
		projects:  new(MockProjectRepository),
		parties:   new(MockPartyRepository),
		jobs:      new(MockResearchRepository),
		messages:  new(MockChatRepository),
		budgets:   new(MockBudgetRepository),
	}

	log := logger.Get()
	f.service = NewService(
		f.lineItems,
		f.proposals,
		f.projects,
		f.parties,
		f.jobs,
		f.messages,
		budgetsvc.NewService(f.budgets, log),
		usagesvc.NewService(new(MockUsageRepository), log),
		nil,
		config.AnthropicConfig{ChatTimeout: 30 * time.Second},
		log,
	)
	return f
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func flagPtr(f benchmark.FlagColor) *benchmark.FlagColor { return &f }

func TestService_Send_EmptyMessage(t *testing.T) {
	f := newChatFixture()

	_, err := f.service.Send(context.Background(), uuid.New(), "   ", chatdomain.Thread{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	f.budgets.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}

func TestService_Send_BudgetDenied(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	userID := uuid.New()

	exhausted := budgetdomain.NewUserBudget(userID, time.Now())
	exhausted.DailySpent = exhausted.DailyLimit
	f.budgets.On("GetByUser", ctx, userID).Return(exhausted, nil)

	_, err := f.service.Send(ctx, userID, "How does this price look?", chatdomain.Thread{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBudgetExceeded))
	f.messages.AssertNotCalled(t, "ListThread", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_BuildContext(t *testing.T) {
	t.Run("empty thread yields no context", func(t *testing.T) {
		f := newChatFixture()

		block, err := f.service.buildContext(context.Background(), uuid.New(), chatdomain.Thread{})

		require.NoError(t, err)
		assert.Empty(t, block)
	})

	t.Run("line item thread", func(t *testing.T) {
		f := newChatFixture()
		ctx := context.Background()
		userID := uuid.New()
		lineItemID := uuid.New()
		proposalID := uuid.New()
		projectID := uuid.New()
		jobID := uuid.New()

		li := &lineitem.LineItem{
			ID:              lineItemID,
			ProposalID:      proposalID,
			UserID:          userID,
			Description:     "Concrete Footings",
			Category:        strPtr("FOOTINGS"),
			Unit:            strPtr("LF"),
			Quantity:        floatPtr(100),
			UnitPrice:       floatPtr(55),
			TotalPrice:      5500,
			MarketAvg:       floatPtr(5000),
			VariancePercent: floatPtr(10),
			FlagColor:       flagPtr(benchmark.FlagGreen),
			ResearchJobID:   &jobID,
		}
		f.lineItems.On("GetByIDForUser", ctx, lineItemID, userID).Return(li, nil)
		f.proposals.On("GetByIDForUser", ctx, proposalID, userID).Return(&proposal.Proposal{
			ID:               proposalID,
			ProjectID:        projectID,
			ContractorName:   "Acme Builders",
			ExtractionStatus: proposal.ExtractionCompleted,
		}, nil)
		f.projects.On("GetByIDForUser", ctx, projectID, userID).Return(&project.Project{
			ID:          projectID,
			Name:        "Hillside Residence",
			City:        "Austin",
			State:       "TX",
			ProjectType: "residential",
			Topography:  strPtr("steep slope"),
		}, nil)
		f.jobs.On("GetByID", ctx, jobID).Return(&research.Job{
			ID:              jobID,
			MarketLow:       floatPtr(4000),
			MarketHigh:      floatPtr(6000),
			MarketAvg:       floatPtr(5000),
			ConfidenceScore: floatPtr(0.85),
			Explanation:     strPtr("Regional pricing for footings"),
		}, nil)

		block, err := f.service.buildContext(ctx, userID, chatdomain.Thread{LineItemID: &lineItemID})

		require.NoError(t, err)
		assert.Contains(t, block, "LINE ITEM CONTEXT:")
		assert.Contains(t, block, "Description: Concrete Footings")
		assert.Contains(t, block, "Quantity: 100 LF")
		assert.Contains(t, block, "Total Price: $5,500")
		assert.Contains(t, block, "Variance: +10.0%")
		assert.Contains(t, block, "PROJECT CONTEXT:")
		assert.Contains(t, block, "Location: Austin, TX")
		assert.Contains(t, block, "Topography: steep slope")
		assert.Contains(t, block, "MARKET RESEARCH:")
		assert.Contains(t, block, "Range: $4,000 - $6,000")
		assert.Contains(t, block, "Confidence: 85%")
	})

	t.Run("proposal thread", func(t *testing.T) {
		f := newChatFixture()
		ctx := context.Background()
		userID := uuid.New()
		proposalID := uuid.New()
		projectID := uuid.New()

		f.proposals.On("GetByIDForUser", ctx, proposalID, userID).Return(&proposal.Proposal{
			ID:               proposalID,
			ProjectID:        projectID,
			ContractorName:   "Acme Builders",
			TotalAmount:      floatPtr(250000),
			ExtractionStatus: proposal.ExtractionCompleted,
		}, nil)
		f.projects.On("GetByIDForUser", ctx, projectID, userID).Return(&project.Project{
			ID:          projectID,
			Name:        "Hillside Residence",
			City:        "Austin",
			State:       "TX",
			ProjectType: "residential",
		}, nil)

		block, err := f.service.buildContext(ctx, userID, chatdomain.Thread{ProposalID: &proposalID})

		require.NoError(t, err)
		assert.Contains(t, block, "PROPOSAL CONTEXT:")
		assert.Contains(t, block, "Contractor: Acme Builders")
		assert.Contains(t, block, "Total: $250,000")
		assert.Contains(t, block, "Status: completed")
		assert.Contains(t, block, "Location: Austin, TX")
	})

	t.Run("unknown line item propagates not found", func(t *testing.T) {
		f := newChatFixture()
		ctx := context.Background()
		userID := uuid.New()
		lineItemID := uuid.New()

		f.lineItems.On("GetByIDForUser", ctx, lineItemID, userID).Return(nil, errors.ErrNotFound)

		_, err := f.service.buildContext(ctx, userID, chatdomain.Thread{LineItemID: &lineItemID})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}
