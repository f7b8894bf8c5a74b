package research

import (
	"strconv"
	"strings"
)

// QueryParams carries the line item and project attributes that shape a
// cost research web search
type QueryParams struct {
	Description  string
	City         string
	State        string
	ProjectType  string
	QualityLevel string
	Topography   string
	SoilType     string
	SiteAccess   string
	UrbanRural   string
	Year         int
}

// BuildSearchQuery assembles a context-aware search query. Site
// characteristics are only included when they deviate from the baseline
// (flat, stable, paved road, standard) since those are the ones that
// move costs.
func BuildSearchQuery(p QueryParams) string {
	parts := []string{p.Description, p.City + " " + p.State}

	if p.ProjectType != "" {
		parts = append(parts, p.ProjectType)
	}
	if p.QualityLevel != "" && p.QualityLevel != "standard" {
		parts = append(parts, p.QualityLevel)
	}
	if p.Topography != "" && p.Topography != "flat" {
		parts = append(parts, strings.ReplaceAll(p.Topography, "_", " "))
	}
	if p.SoilType != "" && p.SoilType != "stable" {
		parts = append(parts, p.SoilType+" soil")
	}
	if p.UrbanRural == "rural" || p.UrbanRural == "remote" {
		parts = append(parts, p.UrbanRural)
	}
	if p.SiteAccess != "" && p.SiteAccess != "paved_road" {
		parts = append(parts, strings.ReplaceAll(p.SiteAccess, "_", " ")+" access")
	}

	parts = append(parts, strconv.Itoa(p.Year)+" cost")

	return strings.Join(parts, " ")
}
