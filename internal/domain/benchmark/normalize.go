package benchmark

import (
	"regexp"
	"strings"
	"time"
)

var (
	fillerWords   = regexp.MustCompile(`\b(install|installation|provide|furnish|supply)\b`)
	unitQuantity  = regexp.MustCompile(`(?i)\d+['"]?\s*(sf|lf|cf|ea|ls|cy|sy)`)
	dimensions    = regexp.MustCompile(`\d+\s*x\s*\d+`)
	whitespace    = regexp.MustCompile(`\s+`)
	nonAlphaNum   = regexp.MustCompile(`[^a-z0-9]`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// NormalizeDescription turns a free-text line-item description into a
// stable cache-key fragment. Removes wording variations while preserving
// meaning; the result contains only [a-z0-9_] with no leading, trailing
// or doubled underscores. Idempotent.
func NormalizeDescription(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	s = fillerWords.ReplaceAllString(s, "")
	s = unitQuantity.ReplaceAllString(s, "")
	s = dimensions.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = nonAlphaNum.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeRegion produces the canonical "city, STATE" region string
func NormalizeRegion(city, state string) string {
	return strings.ToLower(strings.TrimSpace(city)) + ", " + strings.ToUpper(strings.TrimSpace(state))
}

// CurrentPeriod returns the year and quarter used for benchmark freshness
func CurrentPeriod(now time.Time) (year int, quarter int) {
	return now.Year(), int(now.Month()-1)/3 + 1
}
