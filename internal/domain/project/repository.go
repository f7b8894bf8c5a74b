package project

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for projects
type Repository interface {
	// GetByIDForUser returns the project if owned by the user, or ErrNotFound
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Project, error)
}
