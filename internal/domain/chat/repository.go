package chat

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for chat messages
type Repository interface {
	// Insert stores a single message
	Insert(ctx context.Context, m *Message) error

	// ListThread returns up to limit oldest-first messages of the
	// user's conversation identified by the thread
	ListThread(ctx context.Context, userID uuid.UUID, t Thread, limit int) ([]*Message, error)
}
