package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/domain/usage"
	"devwise/internal/metrics"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

// Service maintains the append-only log of paid external API calls
type Service struct {
	repository usage.Repository
	log        *logger.Logger
}

// NewService creates a new usage service
func NewService(repository usage.Repository, log *logger.Logger) *Service {
	return &Service{
		repository: repository,
		log:        log,
	}
}

// RecordParams describes one paid API call to log
type RecordParams struct {
	UserID       uuid.UUID
	Operation    usage.OperationType
	Provider     usage.Provider
	TokensUsed   *int
	Cost         decimal.Decimal
	ProposalID   *uuid.UUID
	LineItemID   *uuid.UUID
	RequestData  map[string]interface{}
	ResponseData map[string]interface{}
}

// Record appends a usage entry. Failures are logged but must not break
// the operation that triggered the call, so callers may ignore the error.
func (s *Service) Record(ctx context.Context, p RecordParams) error {
	entry := &usage.Entry{
		ID:           uuid.New(),
		UserID:       p.UserID,
		Operation:    p.Operation,
		Provider:     p.Provider,
		TokensUsed:   p.TokensUsed,
		Cost:         p.Cost,
		ProposalID:   p.ProposalID,
		LineItemID:   p.LineItemID,
		RequestData:  p.RequestData,
		ResponseData: p.ResponseData,
		CreatedAt:    time.Now(),
	}

	if err := s.repository.Insert(ctx, entry); err != nil {
		s.log.Errorw("Failed to record API usage",
			"user_id", p.UserID,
			"operation", p.Operation,
			"provider", p.Provider,
			"error", err,
		)
		return errors.Wrap(err, "failed to record usage")
	}

	cost, _ := p.Cost.Float64()
	metrics.APISpend.WithLabelValues(string(p.Provider), string(p.Operation)).Add(cost)

	s.log.Debugw("API usage recorded",
		"user_id", p.UserID,
		"operation", p.Operation,
		"provider", p.Provider,
		"cost_usd", p.Cost,
	)

	return nil
}

// CountResearchCalls returns how many research operations hit paid APIs
func (s *Service) CountResearchCalls(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repository.CountByUserAndOperation(ctx, userID, usage.OperationResearch)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count research usage")
	}
	return count, nil
}

// ListRecent returns the newest usage entries for the user
func (s *Service) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*usage.Entry, error) {
	entries, err := s.repository.ListRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list usage entries")
	}
	return entries, nil
}

// CostsByOperationSince aggregates per-operation counts and cost for the user
func (s *Service) CostsByOperationSince(ctx context.Context, userID uuid.UUID, since time.Time) (map[usage.OperationType]usage.OperationStats, error) {
	stats, err := s.repository.SumByOperationSince(ctx, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate usage stats")
	}
	return stats, nil
}
