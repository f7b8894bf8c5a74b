package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"devwise/internal/domain/proposal"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ proposal.Repository = (*ProposalRepository)(nil)

// ProposalRepository implements proposal.Repository using sqlx
type ProposalRepository struct {
	db DBTX
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db DBTX) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `
	id, project_id, user_id, contractor_name, contractor_party_id,
	total_amount, file_name, file_path, file_type, extraction_status,
	extraction_started_at, extraction_completed_at, created_at, updated_at`

// Create inserts a new proposal
func (r *ProposalRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	query := `
		INSERT INTO proposals (
			id, project_id, user_id, contractor_name, contractor_party_id,
			total_amount, file_name, file_path, file_type, extraction_status,
			extraction_started_at, extraction_completed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.UserID, p.ContractorName, p.ContractorPartyID,
		p.TotalAmount, p.FileName, p.FilePath, p.FileType, p.ExtractionStatus,
		p.ExtractionStartedAt, p.ExtractionCompletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create proposal")
	}

	return nil
}

// GetByIDForUser retrieves a proposal owned by the user
func (r *ProposalRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*proposal.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE id = $1 AND user_id = $2`

	var p proposal.Proposal
	err := r.db.GetContext(ctx, &p, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "proposal not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proposal")
	}

	return &p, nil
}

// MarkProcessing sets extraction_status=processing with a start time
func (r *ProposalRepository) MarkProcessing(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	query := `
		UPDATE proposals
		SET extraction_status = $2,
			extraction_started_at = $3,
			updated_at = NOW()
		WHERE id = $1`

	return r.exec(ctx, query, id, proposal.ExtractionProcessing, startedAt)
}

// MarkCompleted sets extraction_status=completed with the extraction results
func (r *ProposalRepository) MarkCompleted(ctx context.Context, id uuid.UUID, totalAmount float64, partyID uuid.UUID, completedAt time.Time) error {
	query := `
		UPDATE proposals
		SET extraction_status = $2,
			total_amount = $3,
			contractor_party_id = $4,
			extraction_completed_at = $5,
			updated_at = NOW()
		WHERE id = $1`

	return r.exec(ctx, query, id, proposal.ExtractionCompleted, totalAmount, partyID, completedAt)
}

// MarkFailed sets extraction_status=failed
func (r *ProposalRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE proposals
		SET extraction_status = $2,
			updated_at = NOW()
		WHERE id = $1`

	return r.exec(ctx, query, id, proposal.ExtractionFailed)
}

// FailStale transitions processing proposals whose extraction started
// before the deadline to failed
func (r *ProposalRepository) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE proposals
		SET extraction_status = $1,
			updated_at = NOW()
		WHERE extraction_status = $2 AND extraction_started_at < $3`

	result, err := r.db.ExecContext(ctx, query,
		proposal.ExtractionFailed, proposal.ExtractionProcessing, olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fail stale proposals")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}

	return rows, nil
}

func (r *ProposalRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "failed to update proposal")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "proposal not found")
	}

	return nil
}
