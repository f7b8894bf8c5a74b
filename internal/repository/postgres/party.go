package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"devwise/internal/domain/party"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ party.Repository = (*PartyRepository)(nil)

// PartyRepository implements party.Repository using sqlx
type PartyRepository struct {
	db DBTX
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(db DBTX) *PartyRepository {
	return &PartyRepository{db: db}
}

const partyColumns = `
	id, user_id, project_id, name, party_type, email, phone, created_at, updated_at`

// FindOrCreate returns the project's party matching the name, creating
// it when absent
func (r *PartyRepository) FindOrCreate(ctx context.Context, userID, projectID uuid.UUID, name string, partyType party.Type) (*party.Party, error) {
	query := `
		SELECT ` + partyColumns + `
		FROM parties
		WHERE project_id = $1 AND name = $2
		LIMIT 1`

	var p party.Party
	err := r.db.GetContext(ctx, &p, query, projectID, name)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to find party")
	}

	now := time.Now()
	p = party.Party{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		Name:      name,
		Type:      partyType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	insert := `
		INSERT INTO parties (
			id, user_id, project_id, name, party_type, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	if _, err := r.db.ExecContext(ctx, insert,
		p.ID, p.UserID, p.ProjectID, p.Name, p.Type, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create party")
	}

	return &p, nil
}

// GetByIDForUser retrieves a party owned by the user
func (r *PartyRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*party.Party, error) {
	query := `
		SELECT ` + partyColumns + `
		FROM parties
		WHERE id = $1 AND user_id = $2`

	var p party.Party
	err := r.db.GetContext(ctx, &p, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "party not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get party")
	}

	return &p, nil
}
