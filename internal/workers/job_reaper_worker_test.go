package workers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devwise/internal/adapters/config"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/research"
	"devwise/pkg/errors"
)

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

func reaperConfig() config.WorkerConfig {
	return config.WorkerConfig{
		JobReaperInterval:    5 * time.Minute,
		ResearchStaleAfter:   10 * time.Minute,
		ExtractionStaleAfter: 15 * time.Minute,
	}
}

func TestJobReaperWorker_Run(t *testing.T) {
	jobs := new(MockResearchRepository)
	proposals := new(MockProposalRepository)
	worker := NewJobReaperWorker(jobs, proposals, reaperConfig())

	ctx := context.Background()
	before := time.Now()

	jobs.On("FailStale", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := before.Add(-10 * time.Minute)
		return cutoff.After(expected.Add(-time.Second)) && cutoff.Before(expected.Add(time.Second))
	})).Return(int64(3), nil)
	proposals.On("FailStale", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := before.Add(-15 * time.Minute)
		return cutoff.After(expected.Add(-time.Second)) && cutoff.Before(expected.Add(time.Second))
	})).Return(int64(1), nil)

	err := worker.Run(ctx)

	require.NoError(t, err)
	jobs.AssertExpectations(t)
	proposals.AssertExpectations(t)

	health := worker.Health()
	assert.Equal(t, int64(1), health.RunCount)
	assert.Equal(t, int64(0), health.ErrorCount)
}

func TestJobReaperWorker_Run_NothingStale(t *testing.T) {
	jobs := new(MockResearchRepository)
	proposals := new(MockProposalRepository)
	worker := NewJobReaperWorker(jobs, proposals, reaperConfig())

	ctx := context.Background()
	jobs.On("FailStale", ctx, mock.Anything).Return(int64(0), nil)
	proposals.On("FailStale", ctx, mock.Anything).Return(int64(0), nil)

	require.NoError(t, worker.Run(ctx))
}

func TestJobReaperWorker_Run_ResearchFailureStopsRun(t *testing.T) {
	jobs := new(MockResearchRepository)
	proposals := new(MockProposalRepository)
	worker := NewJobReaperWorker(jobs, proposals, reaperConfig())

	ctx := context.Background()
	jobs.On("FailStale", ctx, mock.Anything).Return(int64(0), errors.ErrInternal)

	err := worker.Run(ctx)

	require.Error(t, err)
	proposals.AssertNotCalled(t, "FailStale", mock.Anything, mock.Anything)

	health := worker.Health()
	assert.Equal(t, int64(1), health.ErrorCount)
}

func TestJobReaperWorker_Defaults(t *testing.T) {
	worker := NewJobReaperWorker(new(MockResearchRepository), new(MockProposalRepository), reaperConfig())

	assert.Equal(t, "job_reaper", worker.Name())
	assert.Equal(t, 5*time.Minute, worker.Interval())
	assert.True(t, worker.Enabled())
}
