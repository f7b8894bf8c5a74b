package benchmark

import "math"

// FlagColor is the tri-state signal of how a proposed cost compares to market
type FlagColor string

const (
	FlagGreen  FlagColor = "green"
	FlagYellow FlagColor = "yellow"
	FlagRed    FlagColor = "red"
)

// CalculateVariance computes the signed percentage deviation of a proposed
// cost from the market average, rounded to one decimal, and the matching
// flag color. Without a market average the item cannot be judged and is
// flagged yellow with zero variance.
//
// The bands are deliberately asymmetric: a price 10% or more below market
// is flagged yellow as suspicious rather than treated as a good deal.
func CalculateVariance(proposedCost, marketAvg float64) (float64, FlagColor) {
	if marketAvg == 0 {
		return 0, FlagYellow
	}

	variance := (proposedCost - marketAvg) / marketAvg * 100
	variance = math.Round(variance*10) / 10

	// The flag is derived from the rounded value so it always agrees
	// with the percentage shown to the user: a raw 25.04% rounds to
	// 25.0% and stays yellow.
	var flag FlagColor
	switch {
	case variance <= -10:
		flag = FlagYellow
	case variance <= 10:
		flag = FlagGreen
	case variance <= 25:
		flag = FlagYellow
	default:
		flag = FlagRed
	}

	return variance, flag
}
