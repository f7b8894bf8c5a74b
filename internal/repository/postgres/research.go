package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"devwise/internal/domain/research"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ research.Repository = (*ResearchRepository)(nil)

// ResearchRepository implements research.Repository using sqlx
type ResearchRepository struct {
	db DBTX
}

// NewResearchRepository creates a new research job repository
func NewResearchRepository(db DBTX) *ResearchRepository {
	return &ResearchRepository{db: db}
}

// Create inserts a new research job
func (r *ResearchRepository) Create(ctx context.Context, j *research.Job) error {
	query := `
		INSERT INTO research_jobs (
			id, user_id, line_item_id, status, search_query, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err := r.db.ExecContext(ctx, query,
		j.ID, j.UserID, j.LineItemID, j.Status, j.SearchQuery, j.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create research job")
	}

	return nil
}

// GetByID retrieves a research job
func (r *ResearchRepository) GetByID(ctx context.Context, id uuid.UUID) (*research.Job, error) {
	query := `
		SELECT id, user_id, line_item_id, status, search_query, market_low,
			   market_high, market_avg, confidence_score, sources,
			   variance_percent, flag_color, explanation, error_message,
			   created_at, completed_at
		FROM research_jobs
		WHERE id = $1`

	var j research.Job
	var sources pq.StringArray
	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(
		&j.ID, &j.UserID, &j.LineItemID, &j.Status, &j.SearchQuery,
		&j.MarketLow, &j.MarketHigh, &j.MarketAvg, &j.ConfidenceScore,
		&sources, &j.VariancePercent, &j.FlagColor, &j.Explanation,
		&j.ErrorMessage, &j.CreatedAt, &j.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "research job not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get research job")
	}
	j.Sources = sources

	return &j, nil
}

// Complete marks the job completed and persists its market figures
func (r *ResearchRepository) Complete(ctx context.Context, j *research.Job) error {
	query := `
		UPDATE research_jobs
		SET status = $2,
			market_low = $3,
			market_high = $4,
			market_avg = $5,
			confidence_score = $6,
			sources = $7,
			variance_percent = $8,
			flag_color = $9,
			explanation = $10,
			completed_at = $11
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		j.ID, research.StatusCompleted,
		j.MarketLow, j.MarketHigh, j.MarketAvg,
		j.ConfidenceScore, pq.Array(j.Sources),
		j.VariancePercent, j.FlagColor, j.Explanation, j.CompletedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to complete research job")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "research job not found")
	}

	return nil
}

// Fail transitions the job to failed with an error message
func (r *ResearchRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE research_jobs
		SET status = $2,
			error_message = $3,
			completed_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, research.StatusFailed, message)
	if err != nil {
		return errors.Wrap(err, "failed to fail research job")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "research job not found")
	}

	return nil
}

// CountByUser returns the total number of research jobs for a user
func (r *ResearchRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM research_jobs
		WHERE user_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, errors.Wrap(err, "failed to count research jobs")
	}

	return count, nil
}

// FailStale transitions processing jobs created before the deadline to failed
func (r *ResearchRepository) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE research_jobs
		SET status = $1,
			error_message = 'research timed out',
			completed_at = NOW()
		WHERE status = $2 AND created_at < $3`

	result, err := r.db.ExecContext(ctx, query,
		research.StatusFailed, research.StatusProcessing, olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fail stale research jobs")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}

	return rows, nil
}
