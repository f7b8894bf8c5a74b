package postgres

import (
	"context"

	"github.com/google/uuid"

	"devwise/internal/domain/chat"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ chat.Repository = (*ChatRepository)(nil)

// ChatRepository implements chat.Repository using sqlx
type ChatRepository struct {
	db DBTX
}

// NewChatRepository creates a new chat message repository
func NewChatRepository(db DBTX) *ChatRepository {
	return &ChatRepository{db: db}
}

// Insert stores a single message
func (r *ChatRepository) Insert(ctx context.Context, m *chat.Message) error {
	query := `
		INSERT INTO chat_messages (
			id, user_id, line_item_id, proposal_id, role, content,
			tokens_used, estimated_cost, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.LineItemID, m.ProposalID, m.Role, m.Content,
		m.TokensUsed, m.Cost, m.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert chat message")
	}

	return nil
}

// ListThread returns up to limit oldest-first messages of the thread.
// A thread is keyed by line item, by proposal, or by neither for the
// general conversation.
func (r *ChatRepository) ListThread(ctx context.Context, userID uuid.UUID, t chat.Thread, limit int) ([]*chat.Message, error) {
	base := `
		SELECT id, user_id, line_item_id, proposal_id, role, content,
			   tokens_used, estimated_cost, created_at
		FROM chat_messages
		WHERE user_id = $1 AND `

	var (
		query string
		args  []interface{}
	)
	switch {
	case t.LineItemID != nil:
		query = base + `line_item_id = $2 ORDER BY created_at LIMIT $3`
		args = []interface{}{userID, *t.LineItemID, limit}
	case t.ProposalID != nil:
		query = base + `proposal_id = $2 ORDER BY created_at LIMIT $3`
		args = []interface{}{userID, *t.ProposalID, limit}
	default:
		query = base + `line_item_id IS NULL AND proposal_id IS NULL ORDER BY created_at LIMIT $2`
		args = []interface{}{userID, limit}
	}

	var messages []*chat.Message
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list chat messages")
	}

	return messages, nil
}
