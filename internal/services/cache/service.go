package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/domain/benchmark"
	"devwise/internal/domain/research"
	"devwise/internal/domain/usage"
	"devwise/internal/metrics"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

// Tier identifies which cache level produced a hit
type Tier string

const (
	TierExact     Tier = "exact"
	TierSameYear  Tier = "same_year"
	TierPriorYear Tier = "prior_year"
)

// Confidence multipliers for non-exact tiers
const (
	sameYearMultiplier  = 0.9
	priorYearMultiplier = 0.7
)

// SavedPerHit is the estimated external API cost avoided by one cache hit
var SavedPerHit = decimal.NewFromFloat(0.30)

// Hit is a successful benchmark cache lookup
type Hit struct {
	Benchmark  *benchmark.Benchmark
	Tier       Tier
	MarketAvg  float64
	Confidence float64
}

// Stats summarizes cache effectiveness for a user
type Stats struct {
	TotalResearch    int
	CacheHits        int
	APICalls         int
	HitRate          float64
	EstimatedSavings decimal.Decimal
}

// Service is the tiered benchmark cache consulted before any paid
// research call
type Service struct {
	benchmarks benchmark.Repository
	research   research.Repository
	usage      usage.Repository
	log        *logger.Logger
}

// NewService creates a new cache service
func NewService(
	benchmarks benchmark.Repository,
	research research.Repository,
	usage usage.Repository,
	log *logger.Logger,
) *Service {
	return &Service{
		benchmarks: benchmarks,
		research:   research,
		usage:      usage,
		log:        log,
	}
}

// Lookup consults the cache tiers in order: exact quarter, most recent
// quarter of the current year, most recent quarter of the prior year.
// Non-exact tiers degrade the stored confidence. Returns nil on a miss.
func (s *Service) Lookup(ctx context.Context, key benchmark.Key, now time.Time) (*Hit, error) {
	year, quarter := benchmark.CurrentPeriod(now)

	b, err := s.benchmarks.GetExact(ctx, key, year, quarter)
	if err == nil {
		return s.hit(b, TierExact, 1.0), nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "cache lookup failed")
	}

	b, err = s.benchmarks.GetLatestInYear(ctx, key, year)
	if err == nil {
		return s.hit(b, TierSameYear, sameYearMultiplier), nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "cache lookup failed")
	}

	b, err = s.benchmarks.GetLatestInYear(ctx, key, year-1)
	if err == nil {
		return s.hit(b, TierPriorYear, priorYearMultiplier), nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "cache lookup failed")
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return nil, nil
}

func (s *Service) hit(b *benchmark.Benchmark, tier Tier, multiplier float64) *Hit {
	metrics.CacheLookups.WithLabelValues(string(tier)).Inc()
	saved, _ := SavedPerHit.Float64()
	metrics.CacheSavings.Add(saved)

	s.log.Debugw("Benchmark cache hit",
		"tier", tier,
		"category", b.Category,
		"region", b.Region,
		"year", b.Year,
		"quarter", b.Quarter,
	)

	return &Hit{
		Benchmark:  b,
		Tier:       tier,
		MarketAvg:  b.MarketAvg(),
		Confidence: b.Confidence() * multiplier,
	}
}

// StoreParams describes a benchmark to cache after fresh research or a
// user rating
type StoreParams struct {
	Key        benchmark.Key
	Unit       *string
	UnitPrice  *float64
	TotalPrice *float64
	Confidence float64
	Source     benchmark.Source
}

// Store upserts a benchmark for the current period. Failures are logged
// and swallowed: caching is best effort and must never fail the
// operation that produced the data.
func (s *Service) Store(ctx context.Context, p StoreParams, now time.Time) {
	year, quarter := benchmark.CurrentPeriod(now)

	b := &benchmark.Benchmark{
		ID:                    uuid.New(),
		Category:              p.Key.Category,
		DescriptionNormalized: p.Key.DescriptionNormalized,
		Region:                p.Key.Region,
		Year:                  year,
		Quarter:               quarter,
		Unit:                  p.Unit,
		UnitPrice:             p.UnitPrice,
		TotalPrice:            p.TotalPrice,
		ConfidenceScore:       &p.Confidence,
		Source:                p.Source,
		CreatedAt:             now,
	}
	if p.Key.ProjectType != "" {
		b.ProjectType = &p.Key.ProjectType
	}
	if p.Key.QualityLevel != "" {
		b.QualityLevel = &p.Key.QualityLevel
	}

	if err := s.benchmarks.Upsert(ctx, b); err != nil {
		s.log.Errorw("Failed to store benchmark",
			"category", p.Key.Category,
			"region", p.Key.Region,
			"error", err,
		)
	}
}

// Stats derives cache effectiveness from job and usage counts: research
// jobs that produced no paid API usage row were served from cache.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	totalJobs, err := s.research.CountByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count research jobs")
	}

	apiCalls, err := s.usage.CountByUserAndOperation(ctx, userID, usage.OperationResearch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count research API calls")
	}

	hits := totalJobs - apiCalls
	if hits < 0 {
		hits = 0
	}

	stats := &Stats{
		TotalResearch:    totalJobs,
		CacheHits:        hits,
		APICalls:         apiCalls,
		EstimatedSavings: SavedPerHit.Mul(decimal.NewFromInt(int64(hits))),
	}
	if totalJobs > 0 {
		stats.HitRate = float64(hits) / float64(totalJobs)
	}

	return stats, nil
}
