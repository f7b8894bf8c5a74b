package rating

import (
	"context"
	"time"

	"github.com/google/uuid"

	"devwise/internal/domain/benchmark"
	"devwise/internal/domain/lineitem"
	"devwise/internal/domain/project"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/rating"
	cachesvc "devwise/internal/services/cache"
	"devwise/pkg/logger"
)

// Params is the user's feedback on a research result
type Params struct {
	Value            int
	AccuracyFeedback *string
	ActualCost       *float64
	Comments         *string
}

// Outcome reports the stored rating and whether it fed the benchmark cache
type Outcome struct {
	Rating *rating.Rating
	Cached bool
}

// Service records research accuracy feedback. Ratings carrying an
// actual cost become user_rated benchmarks so later lookups improve.
type Service struct {
	ratings   rating.Repository
	lineItems lineitem.Repository
	proposals proposal.Repository
	projects  project.Repository
	cache     *cachesvc.Service
	log       *logger.Logger
}

// NewService creates a new rating service
func NewService(
	ratings rating.Repository,
	lineItems lineitem.Repository,
	proposals proposal.Repository,
	projects project.Repository,
	cache *cachesvc.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		ratings:   ratings,
		lineItems: lineItems,
		proposals: proposals,
		projects:  projects,
		cache:     cache,
		log:       log,
	}
}

// Rate stores the feedback for a line item's research result
func (s *Service) Rate(ctx context.Context, userID, lineItemID uuid.UUID, p Params) (*Outcome, error) {
	r := &rating.Rating{
		ID:               uuid.New(),
		UserID:           userID,
		LineItemID:       lineItemID,
		Value:            p.Value,
		AccuracyFeedback: p.AccuracyFeedback,
		ActualCost:       p.ActualCost,
		Comments:         p.Comments,
		CreatedAt:        time.Now(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	li, err := s.lineItems.GetByIDForUser(ctx, lineItemID, userID)
	if err != nil {
		return nil, err
	}
	r.ResearchJobID = li.ResearchJobID

	if err := s.ratings.Insert(ctx, r); err != nil {
		return nil, err
	}

	// A confirmed actual cost is better data than researched estimates
	cached := false
	if p.ActualCost != nil && li.Quantity != nil && *li.Quantity > 0 {
		if err := s.feedCache(ctx, userID, li, r); err != nil {
			s.log.Errorw("Failed to store rated benchmark",
				"line_item_id", lineItemID, "error", err)
		} else {
			cached = true
		}
	}

	s.log.Infow("Research rated",
		"line_item_id", lineItemID,
		"rating", p.Value,
		"cached", cached,
	)

	return &Outcome{Rating: r, Cached: cached}, nil
}

// List returns the user's ratings for a line item, newest first
func (s *Service) List(ctx context.Context, userID, lineItemID uuid.UUID) ([]*rating.Rating, error) {
	return s.ratings.ListByLineItem(ctx, lineItemID, userID)
}

func (s *Service) feedCache(ctx context.Context, userID uuid.UUID, li *lineitem.LineItem, r *rating.Rating) error {
	prop, err := s.proposals.GetByIDForUser(ctx, li.ProposalID, userID)
	if err != nil {
		return err
	}

	proj, err := s.projects.GetByIDForUser(ctx, prop.ProjectID, userID)
	if err != nil {
		return err
	}

	category := ""
	if li.Category != nil {
		category = *li.Category
	}
	quality := ""
	if proj.QualityLevel != nil {
		quality = *proj.QualityLevel
	}
	key := benchmark.BuildKey(category, li.Description,
		proj.City, proj.State, proj.ProjectType, quality)

	unitPrice := *r.ActualCost / *li.Quantity
	s.cache.Store(ctx, cachesvc.StoreParams{
		Key:        key,
		Unit:       li.Unit,
		UnitPrice:  &unitPrice,
		TotalPrice: r.ActualCost,
		Confidence: r.Confidence(),
		Source:     benchmark.SourceUserRated,
	}, time.Now())

	return nil
}
