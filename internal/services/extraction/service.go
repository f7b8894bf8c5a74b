package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/adapters/anthropic"
	"devwise/internal/adapters/config"
	"devwise/internal/adapters/docstore"
	"devwise/internal/adapters/extract"
	"devwise/internal/domain/lineitem"
	"devwise/internal/domain/party"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/usage"
	"devwise/internal/metrics"
	"devwise/internal/services/budget"
	"devwise/internal/services/ratelimit"
	usagesvc "devwise/internal/services/usage"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

const extractionMaxTokens = 4096

// Model generates completions
type Model interface {
	Complete(ctx context.Context, req anthropic.Request) (*anthropic.Response, error)
}

// Result is the outcome of one proposal extraction
type Result struct {
	LineItemCount int
	TotalAmount   float64
	PartyID       uuid.UUID
	TokensUsed    int
	Cost          decimal.Decimal
}

// Service orchestrates proposal line-item extraction: rate-limited,
// document text to structured line items via one model call
type Service struct {
	proposals proposal.Repository
	lineItems lineitem.Repository
	parties   party.Repository

	budget  *budget.Service
	usage   *usagesvc.Service
	limiter ratelimit.Limiter
	model   Model
	docs    docstore.Store

	extractorFor func(proposal.FileType) (extract.TextExtractor, error)

	limitPerHour int
	timeout      time.Duration

	log *logger.Logger
}

// NewService creates a new extraction orchestrator
func NewService(
	proposals proposal.Repository,
	lineItems lineitem.Repository,
	parties party.Repository,
	budgetSvc *budget.Service,
	usageSvc *usagesvc.Service,
	limiter ratelimit.Limiter,
	model Model,
	docs docstore.Store,
	anthropicCfg config.AnthropicConfig,
	rateCfg config.RateLimitConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		proposals:    proposals,
		lineItems:    lineItems,
		parties:      parties,
		budget:       budgetSvc,
		usage:        usageSvc,
		limiter:      limiter,
		model:        model,
		docs:         docs,
		extractorFor: extract.ForFileType,
		limitPerHour: rateCfg.ExtractionPerHour,
		timeout:      anthropicCfg.ExtractionTimeout,
		log:          log,
	}
}

// Run extracts line items from an uploaded proposal document. The
// rate limit Result is returned whenever the limiter was consulted so
// the HTTP layer can emit quota headers on every response.
func (s *Service) Run(ctx context.Context, userID, proposalID uuid.UUID) (*Result, *ratelimit.Result, error) {
	rl, err := s.limiter.Allow(ctx, fmt.Sprintf("extract:%s", userID), s.limitPerHour, time.Hour)
	if err != nil {
		return nil, nil, errors.Wrap(err, "rate limit check failed")
	}
	if !rl.Allowed {
		metrics.RateLimitDenials.WithLabelValues("extraction").Inc()
		return nil, rl, errors.Wrap(errors.ErrRateLimited,
			"too many extraction requests, please try again later")
	}

	prop, err := s.proposals.GetByIDForUser(ctx, proposalID, userID)
	if err != nil {
		return nil, rl, err
	}

	if err := s.proposals.MarkProcessing(ctx, proposalID, time.Now()); err != nil {
		return nil, rl, errors.Wrap(err, "failed to mark proposal processing")
	}

	result, err := s.extract(ctx, prop)
	if err != nil {
		if failErr := s.proposals.MarkFailed(ctx, proposalID); failErr != nil {
			s.log.Errorw("Failed to mark proposal failed",
				"proposal_id", proposalID, "error", failErr)
		}
		metrics.Extractions.WithLabelValues("failed", fileTypeLabel(prop)).Inc()
		return nil, rl, err
	}

	metrics.Extractions.WithLabelValues("completed", fileTypeLabel(prop)).Inc()
	metrics.ExtractedLineItems.Observe(float64(result.LineItemCount))

	return result, rl, nil
}

func (s *Service) extract(ctx context.Context, prop *proposal.Proposal) (*Result, error) {
	if prop.FileType == nil || prop.FilePath == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "proposal has no uploaded document")
	}

	extractor, err := s.extractorFor(*prop.FileType)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.Open(ctx, *prop.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open document")
	}
	defer func() { _ = doc.Close() }()

	text, err := extractor.Text(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read document text")
	}

	modelStart := time.Now()
	resp, err := s.model.Complete(ctx, anthropic.Request{
		Messages:  []anthropic.Message{{Role: "user", Content: buildExtractionPrompt(text)}},
		MaxTokens: extractionMaxTokens,
		Timeout:   s.timeout,
	})
	metrics.RecordExternalCall("anthropic", time.Since(modelStart), err)
	if err != nil {
		return nil, errors.Wrap(err, "extraction analysis failed")
	}

	cost := resp.Cost()
	tokens := resp.TotalTokens()
	_ = s.usage.Record(ctx, usagesvc.RecordParams{
		UserID:     prop.UserID,
		Operation:  usage.OperationExtraction,
		Provider:   usage.ProviderAnthropic,
		TokensUsed: &tokens,
		Cost:       cost,
		ProposalID: &prop.ID,
		RequestData: map[string]interface{}{
			"file_type":  *prop.FileType,
			"text_bytes": len(text),
		},
	})

	if err := s.budget.RecordSpending(ctx, prop.UserID, cost); err != nil {
		return nil, err
	}

	items, err := parseLineItems(resp.Text)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.Wrap(errors.ErrMalformedResponse, "no line items extracted")
	}

	contractor, err := s.parties.FindOrCreate(ctx, prop.UserID, prop.ProjectID,
		prop.ContractorName, party.TypeContractor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rows := make([]*lineitem.LineItem, 0, len(items))
	total := 0.0
	for _, item := range items {
		total += item.TotalPrice

		rows = append(rows, &lineitem.LineItem{
			ID:          uuid.New(),
			ProposalID:  prop.ID,
			UserID:      prop.UserID,
			PartyID:     &contractor.ID,
			Location:    item.Location,
			Category:    item.Category,
			Description: item.Description,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.lineItems.InsertBatch(ctx, rows); err != nil {
		return nil, errors.Wrap(err, "failed to insert line items")
	}

	if err := s.proposals.MarkCompleted(ctx, prop.ID, total, contractor.ID, time.Now()); err != nil {
		return nil, errors.Wrap(err, "failed to mark proposal completed")
	}

	costF, _ := cost.Float64()
	s.log.Infow("Extraction completed",
		"proposal_id", prop.ID,
		"line_items", len(rows),
		"total_amount", total,
		"tokens", tokens,
		"cost_usd", costF,
	)

	return &Result{
		LineItemCount: len(rows),
		TotalAmount:   total,
		PartyID:       contractor.ID,
		TokensUsed:    tokens,
		Cost:          cost,
	}, nil
}

// extractedItem mirrors the JSON shape requested from the model
type extractedItem struct {
	Location    *string  `json:"location"`
	Category    *string  `json:"category"`
	Description string   `json:"description"`
	Unit        *string  `json:"unit"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	TotalPrice  float64  `json:"total_price"`
}

func parseLineItems(text string) ([]extractedItem, error) {
	raw, err := anthropic.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var extracted struct {
		LineItems []extractedItem `json:"line_items"`
	}
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, "extraction is not valid JSON")
	}
	if extracted.LineItems == nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, "extraction missing line_items")
	}

	return extracted.LineItems, nil
}

func fileTypeLabel(prop *proposal.Proposal) string {
	if prop.FileType == nil {
		return "unknown"
	}
	return string(*prop.FileType)
}

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`You are a construction proposal analyzer. Extract all line items from this proposal into a structured JSON format.

PROPOSAL TEXT:
%s

Extract each line item with:
- location: The section/division (e.g., "01 General Requirements", "03 Concrete")
- category: The subsection (e.g., "PROJECT MANAGEMENT", "FOOTINGS")
- description: Clear description of the work
- unit: Unit of measure (EA, SF, LF, etc.)
- quantity: Numeric quantity
- unit_price: Price per unit
- total_price: Total cost for this item

Return ONLY valid JSON in this format:
{
  "line_items": [
    {
      "location": "01 General Requirements",
      "category": "PROJECT MANAGEMENT",
      "description": "Project Management",
      "unit": "LS",
      "quantity": 1,
      "unit_price": 50000,
      "total_price": 50000
    }
  ]
}

IMPORTANT:
- Extract ALL line items from the document
- Ensure total_price = quantity * unit_price
- Use null for missing values
- Do NOT include any text outside the JSON`, text)
}
