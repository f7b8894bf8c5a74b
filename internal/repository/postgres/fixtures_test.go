package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// insertTestProject inserts a minimal project row and returns its id
func insertTestProject(t *testing.T, db DBTX, userID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO projects (id, user_id, name, city, state, project_type, created_at, updated_at)
		VALUES ($1, $2, 'Test Project', 'Austin', 'TX', 'residential', NOW(), NOW())`,
		id, userID)
	require.NoError(t, err)

	return id
}

// insertTestProposal inserts a minimal proposal row and returns its id
func insertTestProposal(t *testing.T, db DBTX, userID, projectID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO proposals (id, project_id, user_id, contractor_name, extraction_status, created_at, updated_at)
		VALUES ($1, $2, $3, 'Acme Builders', 'pending', NOW(), NOW())`,
		id, projectID, userID)
	require.NoError(t, err)

	return id
}
