package research

import (
	"time"

	"github.com/google/uuid"

	"devwise/internal/domain/benchmark"
)

// Status is the lifecycle state of a research job
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job records one attempt to determine market pricing for a line item.
// A line item references its most recent completed job.
type Job struct {
	ID              uuid.UUID            `db:"id"`
	UserID          uuid.UUID            `db:"user_id"`
	LineItemID      uuid.UUID            `db:"line_item_id"`
	Status          Status               `db:"status"`
	SearchQuery     string               `db:"search_query"`
	MarketLow       *float64             `db:"market_low"`
	MarketHigh      *float64             `db:"market_high"`
	MarketAvg       *float64             `db:"market_avg"`
	ConfidenceScore *float64             `db:"confidence_score"`
	Sources         []string             `db:"-"`
	VariancePercent *float64             `db:"variance_percent"`
	FlagColor       *benchmark.FlagColor `db:"flag_color"`
	Explanation     *string              `db:"explanation"`
	ErrorMessage    *string              `db:"error_message"`
	CreatedAt       time.Time            `db:"created_at"`
	CompletedAt     *time.Time           `db:"completed_at"`
}

// NewJob creates a job in processing state for a research attempt
func NewJob(userID, lineItemID uuid.UUID, searchQuery string, now time.Time) *Job {
	return &Job{
		ID:          uuid.New(),
		UserID:      userID,
		LineItemID:  lineItemID,
		Status:      StatusProcessing,
		SearchQuery: searchQuery,
		CreatedAt:   now,
	}
}
