package lineitem

import (
	"math"
	"time"

	"github.com/google/uuid"

	"devwise/internal/domain/benchmark"
	"devwise/pkg/errors"
)

// totalTolerance is the allowed mismatch between total_price and
// quantity * unit_price (one cent)
const totalTolerance = 0.01

// LineItem is a single priced work item extracted from a proposal.
// market_avg, variance_percent, flag_color and last_researched_at are
// written exclusively by the research workflow.
type LineItem struct {
	ID               uuid.UUID            `db:"id"`
	ProposalID       uuid.UUID            `db:"proposal_id"`
	UserID           uuid.UUID            `db:"user_id"`
	PartyID          *uuid.UUID           `db:"party_id"`
	Location         *string              `db:"location"`
	Category         *string              `db:"category"`
	Description      string               `db:"description"`
	Unit             *string              `db:"unit"`
	Quantity         *float64             `db:"quantity"`
	UnitPrice        *float64             `db:"unit_price"`
	TotalPrice       float64              `db:"total_price"`
	ResearchJobID    *uuid.UUID           `db:"research_job_id"`
	MarketAvg        *float64             `db:"market_avg"`
	VariancePercent  *float64             `db:"variance_percent"`
	FlagColor        *benchmark.FlagColor `db:"flag_color"`
	LastResearchedAt *time.Time           `db:"last_researched_at"`

	// Extraction-time values, captured once on the first manual edit
	OriginalDescription *string  `db:"original_description"`
	OriginalQuantity    *float64 `db:"original_quantity"`
	OriginalUnitPrice   *float64 `db:"original_unit_price"`
	OriginalTotalPrice  *float64 `db:"original_total_price"`

	IsEdited  bool      `db:"is_edited"`
	Notes     *string   `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ValidateTotals checks internal price consistency. When quantity,
// unit price and total price are all present, the total must equal
// quantity * unit_price within one cent.
func (li *LineItem) ValidateTotals() error {
	if li.TotalPrice < 0 {
		return errors.NewValidationError("total_price", "must not be negative", li.TotalPrice)
	}
	if li.Quantity != nil && li.UnitPrice != nil {
		expected := *li.Quantity * *li.UnitPrice
		if math.Abs(expected-li.TotalPrice) > totalTolerance {
			return errors.NewValidationError("total_price",
				"does not match quantity * unit_price", li.TotalPrice)
		}
	}
	return nil
}

// CaptureOriginals snapshots the extraction-time values before the
// first manual edit. No-op once the item is marked edited.
func (li *LineItem) CaptureOriginals() {
	if li.IsEdited {
		return
	}
	desc := li.Description
	total := li.TotalPrice
	li.OriginalDescription = &desc
	li.OriginalQuantity = li.Quantity
	li.OriginalUnitPrice = li.UnitPrice
	li.OriginalTotalPrice = &total
}

// MarketFields is the set of research-owned fields on a line item
type MarketFields struct {
	ResearchJobID   *uuid.UUID
	MarketAvg       float64
	VariancePercent float64
	FlagColor       benchmark.FlagColor
	ResearchedAt    time.Time
}
