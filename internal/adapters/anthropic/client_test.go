package anthropic

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResponse_Cost(t *testing.T) {
	tests := []struct {
		name     string
		in, out  int
		expected string
	}{
		{"zero usage", 0, 0, "0"},
		{"input only", 1_000_000, 0, "3"},
		{"output only", 0, 1_000_000, "15"},
		{"mixed usage", 2000, 500, "0.0135"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{InputTokens: tt.in, OutputTokens: tt.out}
			expected, err := decimal.NewFromString(tt.expected)
			assert.NoError(t, err)
			assert.True(t, r.Cost().Equal(expected),
				"expected %s, got %s", expected, r.Cost())
		})
	}
}

func TestResponse_TotalTokens(t *testing.T) {
	r := &Response{InputTokens: 1200, OutputTokens: 345}
	assert.Equal(t, 1545, r.TotalTokens())
}
