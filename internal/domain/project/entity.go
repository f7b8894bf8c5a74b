package project

import (
	"time"

	"github.com/google/uuid"
)

// Project is the construction project a proposal belongs to. Its location
// and site characteristics drive market research accuracy.
type Project struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Name         string    `db:"name"`
	City         string    `db:"city"`
	State        string    `db:"state"`
	ProjectType  string    `db:"project_type"`
	QualityLevel *string   `db:"quality_level"`
	Topography   *string   `db:"topography"`
	SoilType     *string   `db:"soil_type"`
	SiteAccess   *string   `db:"site_access"`
	UrbanRural   *string   `db:"urban_rural"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
