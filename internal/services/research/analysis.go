package research

import (
	"encoding/json"

	"devwise/internal/adapters/anthropic"
	"devwise/pkg/errors"
)

// Analysis is the model's market assessment of one line item
type Analysis struct {
	MarketLow       float64  `json:"market_low"`
	MarketHigh      float64  `json:"market_high"`
	MarketAvg       float64  `json:"market_avg"`
	ConfidenceScore float64  `json:"confidence_score"`
	Explanation     string   `json:"explanation"`
	Sources         []string `json:"sources"`
}

// parseAnalysis extracts and validates the JSON analysis from model
// output. Model replies may wrap the JSON in prose; only the first
// balanced top-level object is considered.
func parseAnalysis(text string) (*Analysis, error) {
	raw, err := anthropic.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	// Decode into a loose map first so missing and non-numeric fields
	// can be told apart from zero values
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, "analysis is not valid JSON")
	}

	for _, name := range []string{"market_low", "market_high", "market_avg", "confidence_score"} {
		v, ok := fields[name]
		if !ok {
			return nil, errors.Wrapf(errors.ErrMalformedResponse, "analysis missing %s", name)
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedResponse, "analysis field %s is not numeric", name)
		}
	}

	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, "failed to decode analysis")
	}
	if a.Sources == nil {
		a.Sources = []string{}
	}

	return &a, nil
}
