package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"devwise/internal/domain/project"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ project.Repository = (*ProjectRepository)(nil)

// ProjectRepository implements project.Repository using sqlx
type ProjectRepository struct {
	db DBTX
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByIDForUser retrieves a project owned by the user
func (r *ProjectRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*project.Project, error) {
	query := `
		SELECT id, user_id, name, city, state, project_type, quality_level,
			   topography, soil_type, site_access, urban_rural,
			   created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2`

	var p project.Project
	err := r.db.GetContext(ctx, &p, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "project not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get project")
	}

	return &p, nil
}
