package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/adapters/anthropic"
	"devwise/internal/adapters/brave"
	"devwise/internal/adapters/config"
	"devwise/internal/domain/benchmark"
	"devwise/internal/domain/lineitem"
	"devwise/internal/domain/project"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/research"
	"devwise/internal/domain/usage"
	"devwise/internal/metrics"
	"devwise/internal/services/budget"
	cachesvc "devwise/internal/services/cache"
	"devwise/internal/services/ratelimit"
	usagesvc "devwise/internal/services/usage"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

const (
	searchResultCount = 10
	analysisMaxTokens = 2048
)

// Searcher runs web searches
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]brave.Result, error)
}

// Model generates completions
type Model interface {
	Complete(ctx context.Context, req anthropic.Request) (*anthropic.Response, error)
}

// Result is the outcome of one research request
type Result struct {
	Cached             bool
	JobID              *uuid.UUID
	MarketLow          *float64
	MarketHigh         *float64
	MarketAvg          float64
	VariancePercent    float64
	FlagColor          benchmark.FlagColor
	ConfidenceScore    float64
	Explanation        string
	Sources            []string
	Cost               decimal.Decimal
	SearchResultsCount int
}

// Service orchestrates market research for line items: cache first,
// budget gate, then one web search and one model analysis per miss
type Service struct {
	lineItems lineitem.Repository
	proposals proposal.Repository
	projects  project.Repository
	jobs      research.Repository

	cache   *cachesvc.Service
	budget  *budget.Service
	usage   *usagesvc.Service
	limiter ratelimit.Limiter
	search  Searcher
	model   Model

	limitPerHour int
	timeout      time.Duration

	log *logger.Logger
}

// NewService creates a new research orchestrator
func NewService(
	lineItems lineitem.Repository,
	proposals proposal.Repository,
	projects project.Repository,
	jobs research.Repository,
	cache *cachesvc.Service,
	budgetSvc *budget.Service,
	usageSvc *usagesvc.Service,
	limiter ratelimit.Limiter,
	search Searcher,
	model Model,
	anthropicCfg config.AnthropicConfig,
	rateCfg config.RateLimitConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		lineItems:    lineItems,
		proposals:    proposals,
		projects:     projects,
		jobs:         jobs,
		cache:        cache,
		budget:       budgetSvc,
		usage:        usageSvc,
		limiter:      limiter,
		search:       search,
		model:        model,
		limitPerHour: rateCfg.ResearchPerHour,
		timeout:      anthropicCfg.ResearchTimeout,
		log:          log,
	}
}

// Run researches market pricing for a line item. A cache hit costs
// nothing, consumes no budget and no rate-limit quota; only a miss is
// rate limited, budget gated, and performs one web search plus one
// model analysis. The rate limit Result is returned whenever the
// limiter was consulted so the HTTP layer can emit quota headers.
func (s *Service) Run(ctx context.Context, userID, lineItemID uuid.UUID) (*Result, *ratelimit.Result, error) {
	started := time.Now()

	li, err := s.lineItems.GetByIDForUser(ctx, lineItemID, userID)
	if err != nil {
		return nil, nil, err
	}

	prop, err := s.proposals.GetByIDForUser(ctx, li.ProposalID, userID)
	if err != nil {
		return nil, nil, err
	}

	proj, err := s.projects.GetByIDForUser(ctx, prop.ProjectID, userID)
	if err != nil {
		return nil, nil, err
	}

	key := benchmark.BuildKey(
		deref(li.Category), li.Description,
		proj.City, proj.State,
		proj.ProjectType, deref(proj.QualityLevel),
	)

	hit, err := s.cache.Lookup(ctx, key, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if hit != nil {
		result, err := s.fromCache(ctx, li, hit)
		return result, nil, err
	}

	rl, err := s.limiter.Allow(ctx, fmt.Sprintf("research:%s", userID), s.limitPerHour, time.Hour)
	if err != nil {
		return nil, nil, errors.Wrap(err, "rate limit check failed")
	}
	if !rl.Allowed {
		metrics.RateLimitDenials.WithLabelValues("research").Inc()
		return nil, rl, errors.Wrap(errors.ErrRateLimited,
			"too many research requests, please try again later")
	}

	check, err := s.budget.Check(ctx, userID, budget.EstimateResearch)
	if err != nil {
		return nil, rl, err
	}
	if !check.Allowed {
		return nil, rl, errors.Wrap(errors.ErrBudgetExceeded, check.Reason)
	}

	query := BuildSearchQuery(QueryParams{
		Description:  li.Description,
		City:         proj.City,
		State:        proj.State,
		ProjectType:  proj.ProjectType,
		QualityLevel: deref(proj.QualityLevel),
		Topography:   deref(proj.Topography),
		SoilType:     deref(proj.SoilType),
		SiteAccess:   deref(proj.SiteAccess),
		UrbanRural:   deref(proj.UrbanRural),
		Year:         time.Now().Year(),
	})

	job := research.NewJob(userID, lineItemID, query, time.Now())
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, rl, errors.Wrap(err, "failed to create research job")
	}

	result, err := s.investigate(ctx, li, proj, key, job)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		metrics.ResearchJobs.WithLabelValues("failed").Inc()
		return nil, rl, err
	}

	metrics.ResearchJobs.WithLabelValues("completed").Inc()
	metrics.ResearchDuration.Observe(time.Since(started).Seconds())

	return result, rl, nil
}

// fromCache serves a research request from a cached benchmark at zero cost
func (s *Service) fromCache(ctx context.Context, li *lineitem.LineItem, hit *cachesvc.Hit) (*Result, error) {
	variance, flag := benchmark.CalculateVariance(li.TotalPrice, hit.MarketAvg)

	now := time.Now()
	err := s.lineItems.UpdateMarketFields(ctx, li.ID, lineitem.MarketFields{
		ResearchJobID:   li.ResearchJobID,
		MarketAvg:       hit.MarketAvg,
		VariancePercent: variance,
		FlagColor:       flag,
		ResearchedAt:    now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update line item")
	}

	metrics.ResearchJobs.WithLabelValues("cached").Inc()

	s.log.Infow("Research served from cache",
		"line_item_id", li.ID,
		"tier", hit.Tier,
		"market_avg", hit.MarketAvg,
	)

	return &Result{
		Cached:          true,
		MarketAvg:       hit.MarketAvg,
		VariancePercent: variance,
		FlagColor:       flag,
		ConfidenceScore: hit.Confidence,
		Explanation: fmt.Sprintf("Using cached market data from %s",
			hit.Benchmark.CreatedAt.Format("2006-01-02")),
		Cost: decimal.Zero,
	}, nil
}

// investigate performs the paid research path for an already created job
func (s *Service) investigate(
	ctx context.Context,
	li *lineitem.LineItem,
	proj *project.Project,
	key benchmark.Key,
	job *research.Job,
) (*Result, error) {
	searchStart := time.Now()
	results, err := s.search.Search(ctx, job.SearchQuery, searchResultCount)
	metrics.RecordExternalCall("brave", time.Since(searchStart), err)
	if err != nil {
		return nil, errors.Wrap(err, "web search failed")
	}

	braveCost := brave.CostPerSearch
	_ = s.usage.Record(ctx, usagesvc.RecordParams{
		UserID:      job.UserID,
		Operation:   usage.OperationResearch,
		Provider:    usage.ProviderBrave,
		Cost:        braveCost,
		LineItemID:  &li.ID,
		RequestData: map[string]interface{}{"search_query": job.SearchQuery},
		ResponseData: map[string]interface{}{
			"results_count": len(results),
		},
	})

	prompt := buildAnalysisPrompt(li, proj, results)

	modelStart := time.Now()
	resp, err := s.model.Complete(ctx, anthropic.Request{
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		MaxTokens: analysisMaxTokens,
		Timeout:   s.timeout,
	})
	metrics.RecordExternalCall("anthropic", time.Since(modelStart), err)
	if err != nil {
		return nil, errors.Wrap(err, "cost analysis failed")
	}

	claudeCost := resp.Cost()
	tokens := resp.TotalTokens()
	_ = s.usage.Record(ctx, usagesvc.RecordParams{
		UserID:     job.UserID,
		Operation:  usage.OperationResearch,
		Provider:   usage.ProviderAnthropic,
		TokensUsed: &tokens,
		Cost:       claudeCost,
		LineItemID: &li.ID,
		RequestData: map[string]interface{}{
			"line_item_description": li.Description,
			"search_results_count":  len(results),
		},
	})

	analysis, err := parseAnalysis(resp.Text)
	if err != nil {
		return nil, err
	}

	variance, flag := benchmark.CalculateVariance(li.TotalPrice, analysis.MarketAvg)

	totalCost := braveCost.Add(claudeCost)
	if err := s.budget.RecordSpending(ctx, job.UserID, totalCost); err != nil {
		return nil, err
	}

	now := time.Now()
	job.MarketLow = &analysis.MarketLow
	job.MarketHigh = &analysis.MarketHigh
	job.MarketAvg = &analysis.MarketAvg
	job.ConfidenceScore = &analysis.ConfidenceScore
	job.Sources = analysis.Sources
	job.VariancePercent = &variance
	job.FlagColor = &flag
	job.Explanation = &analysis.Explanation
	job.CompletedAt = &now
	if err := s.jobs.Complete(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to complete research job")
	}

	err = s.lineItems.UpdateMarketFields(ctx, li.ID, lineitem.MarketFields{
		ResearchJobID:   &job.ID,
		MarketAvg:       analysis.MarketAvg,
		VariancePercent: variance,
		FlagColor:       flag,
		ResearchedAt:    now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update line item")
	}

	s.cache.Store(ctx, cachesvc.StoreParams{
		Key:        key,
		Unit:       li.Unit,
		UnitPrice:  li.UnitPrice,
		TotalPrice: &analysis.MarketAvg,
		Confidence: analysis.ConfidenceScore,
		Source:     benchmark.SourceResearched,
	}, now)

	cost, _ := totalCost.Float64()
	s.log.Infow("Research completed",
		"line_item_id", li.ID,
		"job_id", job.ID,
		"market_avg", analysis.MarketAvg,
		"flag", flag,
		"cost_usd", cost,
	)

	return &Result{
		Cached:             false,
		JobID:              &job.ID,
		MarketLow:          &analysis.MarketLow,
		MarketHigh:         &analysis.MarketHigh,
		MarketAvg:          analysis.MarketAvg,
		VariancePercent:    variance,
		FlagColor:          flag,
		ConfidenceScore:    analysis.ConfidenceScore,
		Explanation:        analysis.Explanation,
		Sources:            analysis.Sources,
		Cost:               totalCost,
		SearchResultsCount: len(results),
	}, nil
}

func (s *Service) failJob(ctx context.Context, id uuid.UUID, cause error) {
	if err := s.jobs.Fail(ctx, id, cause.Error()); err != nil {
		s.log.Errorw("Failed to mark research job failed", "job_id", id, "error", err)
	}
}

// buildAnalysisPrompt renders the line item, project context and
// numbered search results into the analysis prompt
func buildAnalysisPrompt(li *lineitem.LineItem, proj *project.Project, results []brave.Result) string {
	var item strings.Builder
	fmt.Fprintf(&item, "Description: %s\n", li.Description)
	if li.Quantity != nil {
		fmt.Fprintf(&item, "Quantity: %s %s\n", humanize.Ftoa(*li.Quantity), deref(li.Unit))
	}
	fmt.Fprintf(&item, "Contractor's Price: $%s\n", humanize.Commaf(li.TotalPrice))
	if li.UnitPrice != nil {
		fmt.Fprintf(&item, "Unit Price: $%s/%s\n", humanize.Ftoa(*li.UnitPrice), deref(li.Unit))
	}

	var site strings.Builder
	fmt.Fprintf(&site, "Location: %s, %s\n", proj.City, proj.State)
	fmt.Fprintf(&site, "Type: %s\n", proj.ProjectType)
	quality := deref(proj.QualityLevel)
	if quality == "" {
		quality = "standard"
	}
	fmt.Fprintf(&site, "Quality: %s\n", quality)
	if v := deref(proj.Topography); v != "" {
		fmt.Fprintf(&site, "Topography: %s\n", v)
	}
	if v := deref(proj.SoilType); v != "" {
		fmt.Fprintf(&site, "Soil: %s\n", v)
	}
	if v := deref(proj.SiteAccess); v != "" {
		fmt.Fprintf(&site, "Access: %s\n", v)
	}
	if v := deref(proj.UrbanRural); v != "" {
		fmt.Fprintf(&site, "Setting: %s\n", v)
	}

	var search strings.Builder
	for i, r := range results {
		fmt.Fprintf(&search, "[%d] %s\n%s\nSource: %s\n\n", i+1, r.Title, r.Description, r.URL)
	}

	return fmt.Sprintf(`You are a construction cost analyst. Analyze current market costs for this line item based on web search results.

LINE ITEM:
%s
PROJECT CONTEXT:
%s
SEARCH RESULTS:
%s
Based on the search results and project context, provide a cost analysis in this EXACT JSON format:
{
  "market_low": 0.00,
  "market_high": 0.00,
  "market_avg": 0.00,
  "confidence_score": 0.0,
  "explanation": "Brief explanation of the analysis",
  "sources": ["source1", "source2"]
}

IMPORTANT:
- All prices in USD
- market_avg should be your best estimate of fair market cost
- confidence_score: 0.0-1.0 (how confident you are in this estimate)
- Consider site characteristics when analyzing costs
- If search results are insufficient, use lower confidence score
- Return ONLY the JSON, no other text`,
		item.String(), site.String(), search.String())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
