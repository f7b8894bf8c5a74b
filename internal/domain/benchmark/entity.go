package benchmark

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies how a benchmark was obtained
type Source string

const (
	SourceResearched Source = "researched"
	SourceUserRated  Source = "user_rated"
	SourceVerified   Source = "verified"
)

// DefaultConfidence is assumed for rows stored without an explicit score
const DefaultConfidence = 0.8

// Benchmark is a cached market-price observation for a normalized
// item/region/period. At most one row exists per
// (category, description, region, year, quarter).
type Benchmark struct {
	ID                    uuid.UUID `db:"id"`
	Category              string    `db:"item_category"`
	DescriptionNormalized string    `db:"item_description_normalized"`
	Region                string    `db:"region"`
	ProjectType           *string   `db:"project_type"`
	QualityLevel          *string   `db:"quality_level"`
	Unit                  *string   `db:"unit"`
	UnitPrice             *float64  `db:"unit_price"`
	TotalPrice            *float64  `db:"total_price"`
	Year                  int       `db:"year"`
	Quarter               int       `db:"quarter"`
	ConfidenceScore       *float64  `db:"confidence_score"`
	Source                Source    `db:"source"`
	CreatedAt             time.Time `db:"created_at"`
}

// MarketAvg returns the benchmark's market average: unit price when
// present, otherwise total price, otherwise zero.
func (b *Benchmark) MarketAvg() float64 {
	if b.UnitPrice != nil && *b.UnitPrice != 0 {
		return *b.UnitPrice
	}
	if b.TotalPrice != nil {
		return *b.TotalPrice
	}
	return 0
}

// Confidence returns the stored confidence score or the default
func (b *Benchmark) Confidence() float64 {
	if b.ConfidenceScore != nil && *b.ConfidenceScore != 0 {
		return *b.ConfidenceScore
	}
	return DefaultConfidence
}

// Key is the tuple used to look up benchmarks. ProjectType and
// QualityLevel are carried for storage but do not participate in matching.
type Key struct {
	Category              string
	DescriptionNormalized string
	Region                string
	ProjectType           string
	QualityLevel          string
}

// BuildKey normalizes raw line-item and project attributes into a cache key.
// An empty category defaults to "general".
func BuildKey(category, description, city, state, projectType, qualityLevel string) Key {
	if category == "" {
		category = "general"
	}
	return Key{
		Category:              category,
		DescriptionNormalized: NormalizeDescription(description),
		Region:                NormalizeRegion(city, state),
		ProjectType:           projectType,
		QualityLevel:          qualityLevel,
	}
}
