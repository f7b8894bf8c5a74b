package usage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType identifies which feature triggered a paid API call
type OperationType string

const (
	OperationExtraction      OperationType = "extraction"
	OperationResearch        OperationType = "research"
	OperationChat            OperationType = "chat"
	OperationAlternatives    OperationType = "alternatives"
	OperationScopeGeneration OperationType = "scope_generation"
)

// Provider identifies the external API that was billed
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderBrave     Provider = "brave"
)

// Entry is one append-only record of a paid external API call.
// Never mutated or deleted after insert.
type Entry struct {
	ID           uuid.UUID              `db:"id"`
	UserID       uuid.UUID              `db:"user_id"`
	Operation    OperationType          `db:"operation_type"`
	Provider     Provider               `db:"api_provider"`
	TokensUsed   *int                   `db:"tokens_used"`
	Cost         decimal.Decimal        `db:"estimated_cost"`
	ProposalID   *uuid.UUID             `db:"proposal_id"`
	LineItemID   *uuid.UUID             `db:"line_item_id"`
	RequestData  map[string]interface{} `db:"-"`
	ResponseData map[string]interface{} `db:"-"`
	CreatedAt    time.Time              `db:"created_at"`
}

// OperationStats aggregates usage rows for one operation type
type OperationStats struct {
	Count int
	Cost  decimal.Decimal
}
