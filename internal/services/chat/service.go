package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devwise/internal/adapters/anthropic"
	"devwise/internal/adapters/config"
	"devwise/internal/domain/chat"
	"devwise/internal/domain/lineitem"
	"devwise/internal/domain/party"
	"devwise/internal/domain/project"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/research"
	"devwise/internal/domain/usage"
	"devwise/internal/metrics"
	"devwise/internal/services/budget"
	usagesvc "devwise/internal/services/usage"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

const chatMaxTokens = 1024

const systemPrompt = `You are a construction cost analysis assistant. You help users understand construction proposals, line items, costs, and market pricing. Be concise, accurate, and helpful. When discussing costs, always consider the project context (location, site characteristics, etc.). If you don't have enough information, say so.`

// Result is the assistant's reply with its metered cost
type Result struct {
	Message    string
	TokensUsed int
	Cost       decimal.Decimal
}

// Service runs budget-gated conversations grounded in proposal and
// line item context
type Service struct {
	lineItems lineitem.Repository
	proposals proposal.Repository
	projects  project.Repository
	parties   party.Repository
	jobs      research.Repository
	messages  chat.Repository

	budget  *budget.Service
	usage   *usagesvc.Service
	model   *anthropic.Client
	timeout time.Duration

	log *logger.Logger
}

// NewService creates a new chat service
func NewService(
	lineItems lineitem.Repository,
	proposals proposal.Repository,
	projects project.Repository,
	parties party.Repository,
	jobs research.Repository,
	messages chat.Repository,
	budgetSvc *budget.Service,
	usageSvc *usagesvc.Service,
	model *anthropic.Client,
	cfg config.AnthropicConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		lineItems: lineItems,
		proposals: proposals,
		projects:  projects,
		parties:   parties,
		jobs:      jobs,
		messages:  messages,
		budget:    budgetSvc,
		usage:     usageSvc,
		model:     model,
		timeout:   cfg.ChatTimeout,
		log:       log,
	}
}

// Send runs one conversation turn. The turn is budget-gated with a
// fixed estimate; the actual metered cost is recorded afterwards.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, message string, thread chat.Thread) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errors.NewValidationError("message", "is required", message)
	}

	check, err := s.budget.Check(ctx, userID, budget.EstimateChat)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, errors.Wrap(errors.ErrBudgetExceeded, check.Reason)
	}

	contextBlock, err := s.buildContext(ctx, userID, thread)
	if err != nil {
		return nil, err
	}

	history, err := s.messages.ListThread(ctx, userID, thread, chat.HistoryLimit)
	if err != nil {
		return nil, err
	}

	var msgs []anthropic.Message
	if contextBlock != "" {
		msgs = append(msgs,
			anthropic.Message{
				Role: "user",
				Content: fmt.Sprintf(
					"Here is the context for this conversation:\n\n%s\n\nPlease help me with questions about this.",
					contextBlock),
			},
			anthropic.Message{
				Role:    "assistant",
				Content: "I understand the context. I'm here to help you with any questions about this construction line item, proposal, or project. What would you like to know?",
			},
		)
	}
	for _, m := range history {
		msgs = append(msgs, anthropic.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, anthropic.Message{Role: "user", Content: message})

	modelStart := time.Now()
	resp, err := s.model.Complete(ctx, anthropic.Request{
		System:    systemPrompt,
		Messages:  msgs,
		MaxTokens: chatMaxTokens,
		Timeout:   s.timeout,
	})
	metrics.RecordExternalCall("anthropic", time.Since(modelStart), err)
	if err != nil {
		return nil, errors.Wrap(err, "chat completion failed")
	}

	cost := resp.Cost()
	tokens := resp.TotalTokens()

	if err := s.budget.RecordSpending(ctx, userID, cost); err != nil {
		return nil, err
	}

	_ = s.usage.Record(ctx, usagesvc.RecordParams{
		UserID:     userID,
		Operation:  usage.OperationChat,
		Provider:   usage.ProviderAnthropic,
		TokensUsed: &tokens,
		Cost:       cost,
		ProposalID: thread.ProposalID,
		LineItemID: thread.LineItemID,
	})

	now := time.Now()
	userMsg := &chat.Message{
		ID:         uuid.New(),
		UserID:     userID,
		LineItemID: thread.LineItemID,
		ProposalID: thread.ProposalID,
		Role:       chat.RoleUser,
		Content:    message,
		CreatedAt:  now,
	}
	assistantMsg := &chat.Message{
		ID:         uuid.New(),
		UserID:     userID,
		LineItemID: thread.LineItemID,
		ProposalID: thread.ProposalID,
		Role:       chat.RoleAssistant,
		Content:    resp.Text,
		TokensUsed: &tokens,
		Cost:       &cost,
		CreatedAt:  now.Add(time.Millisecond),
	}
	if err := s.messages.Insert(ctx, userMsg); err != nil {
		return nil, err
	}
	if err := s.messages.Insert(ctx, assistantMsg); err != nil {
		return nil, err
	}

	return &Result{
		Message:    resp.Text,
		TokensUsed: tokens,
		Cost:       cost,
	}, nil
}

// buildContext renders the thread's line item or proposal into a
// context block for the model. An unknown thread yields no context.
func (s *Service) buildContext(ctx context.Context, userID uuid.UUID, thread chat.Thread) (string, error) {
	switch {
	case thread.LineItemID != nil:
		return s.lineItemContext(ctx, userID, *thread.LineItemID)
	case thread.ProposalID != nil:
		return s.proposalContext(ctx, userID, *thread.ProposalID)
	default:
		return "", nil
	}
}

func (s *Service) lineItemContext(ctx context.Context, userID, lineItemID uuid.UUID) (string, error) {
	li, err := s.lineItems.GetByIDForUser(ctx, lineItemID, userID)
	if err != nil {
		return "", err
	}

	prop, err := s.proposals.GetByIDForUser(ctx, li.ProposalID, userID)
	if err != nil {
		return "", err
	}

	proj, err := s.projects.GetByIDForUser(ctx, prop.ProjectID, userID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("LINE ITEM CONTEXT:\n")
	fmt.Fprintf(&sb, "Description: %s\n", li.Description)
	if li.Category != nil {
		fmt.Fprintf(&sb, "Category: %s\n", *li.Category)
	}
	if li.Location != nil {
		fmt.Fprintf(&sb, "Location: %s\n", *li.Location)
	}
	if li.Quantity != nil {
		unit := ""
		if li.Unit != nil {
			unit = *li.Unit
		}
		fmt.Fprintf(&sb, "Quantity: %s %s\n", humanize.Ftoa(*li.Quantity), unit)
	}
	if li.UnitPrice != nil {
		fmt.Fprintf(&sb, "Unit Price: $%s\n", humanize.Ftoa(*li.UnitPrice))
	}
	fmt.Fprintf(&sb, "Total Price: $%s\n", humanize.Commaf(li.TotalPrice))
	if li.PartyID != nil {
		if p, err := s.parties.GetByIDForUser(ctx, *li.PartyID, userID); err == nil {
			fmt.Fprintf(&sb, "Party: %s\n", p.Name)
		}
	}
	if li.MarketAvg != nil {
		fmt.Fprintf(&sb, "Market Average: $%s\n", humanize.Commaf(*li.MarketAvg))
	}
	if li.VariancePercent != nil {
		fmt.Fprintf(&sb, "Variance: %+.1f%%\n", *li.VariancePercent)
	}
	if li.FlagColor != nil {
		fmt.Fprintf(&sb, "Flag: %s\n", *li.FlagColor)
	}
	if li.IsEdited {
		sb.WriteString("Status: Edited from original\n")
	}

	sb.WriteString("\nPROJECT CONTEXT:\n")
	fmt.Fprintf(&sb, "Name: %s\n", proj.Name)
	fmt.Fprintf(&sb, "Location: %s, %s\n", proj.City, proj.State)
	fmt.Fprintf(&sb, "Type: %s\n", proj.ProjectType)
	appendOptional(&sb, "Quality", proj.QualityLevel)
	appendOptional(&sb, "Topography", proj.Topography)
	appendOptional(&sb, "Soil", proj.SoilType)
	appendOptional(&sb, "Site Access", proj.SiteAccess)
	appendOptional(&sb, "Setting", proj.UrbanRural)

	if li.ResearchJobID != nil {
		if job, err := s.jobs.GetByID(ctx, *li.ResearchJobID); err == nil {
			sb.WriteString("\nMARKET RESEARCH:\n")
			fmt.Fprintf(&sb, "Range: %s - %s\n",
				dollarOrNA(job.MarketLow), dollarOrNA(job.MarketHigh))
			fmt.Fprintf(&sb, "Average: %s\n", dollarOrNA(job.MarketAvg))
			confidence := 0.0
			if job.ConfidenceScore != nil {
				confidence = *job.ConfidenceScore
			}
			fmt.Fprintf(&sb, "Confidence: %.0f%%\n", confidence*100)
			if job.Explanation != nil {
				fmt.Fprintf(&sb, "Analysis: %s\n", *job.Explanation)
			}
		}
	}

	return sb.String(), nil
}

func (s *Service) proposalContext(ctx context.Context, userID, proposalID uuid.UUID) (string, error) {
	prop, err := s.proposals.GetByIDForUser(ctx, proposalID, userID)
	if err != nil {
		return "", err
	}

	proj, err := s.projects.GetByIDForUser(ctx, prop.ProjectID, userID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("PROPOSAL CONTEXT:\n")
	fmt.Fprintf(&sb, "Contractor: %s\n", prop.ContractorName)
	if prop.TotalAmount != nil {
		fmt.Fprintf(&sb, "Total: $%s\n", humanize.Commaf(*prop.TotalAmount))
	}
	fmt.Fprintf(&sb, "Status: %s\n", prop.ExtractionStatus)

	sb.WriteString("\nPROJECT CONTEXT:\n")
	fmt.Fprintf(&sb, "Name: %s\n", proj.Name)
	fmt.Fprintf(&sb, "Location: %s, %s\n", proj.City, proj.State)
	fmt.Fprintf(&sb, "Type: %s\n", proj.ProjectType)

	return sb.String(), nil
}

func appendOptional(sb *strings.Builder, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(sb, "%s: %s\n", label, *v)
	}
}

func dollarOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return "$" + humanize.Commaf(*v)
}
