package party

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for parties
type Repository interface {
	// FindOrCreate returns the project's party matching the name,
	// creating it when absent
	FindOrCreate(ctx context.Context, userID, projectID uuid.UUID, name string, partyType Type) (*Party, error)

	// GetByIDForUser returns the party if owned by the user, or ErrNotFound
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Party, error)
}
