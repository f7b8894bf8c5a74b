package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role is the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryLimit caps how many prior messages are replayed into the model context
const HistoryLimit = 20

// Message is one turn of a conversation. Threads are scoped to a line
// item, a proposal, or neither (a general conversation). Assistant
// messages carry the token usage and cost of producing them.
type Message struct {
	ID         uuid.UUID        `db:"id"`
	UserID     uuid.UUID        `db:"user_id"`
	LineItemID *uuid.UUID       `db:"line_item_id"`
	ProposalID *uuid.UUID       `db:"proposal_id"`
	Role       Role             `db:"role"`
	Content    string           `db:"content"`
	TokensUsed *int             `db:"tokens_used"`
	Cost       *decimal.Decimal `db:"estimated_cost"`
	CreatedAt  time.Time        `db:"created_at"`
}

// Thread identifies which conversation a message belongs to
type Thread struct {
	LineItemID *uuid.UUID
	ProposalID *uuid.UUID
}
