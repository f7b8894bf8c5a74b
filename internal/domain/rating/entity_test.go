package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"devwise/pkg/errors"
)

func TestRating_Validate(t *testing.T) {
	for _, value := range []int{1, 2, 3, 4, 5} {
		r := &Rating{Value: value}
		assert.NoError(t, r.Validate(), "rating %d must be valid", value)
	}

	for _, value := range []int{0, -1, 6, 100} {
		r := &Rating{Value: value}
		err := r.Validate()
		assert.Error(t, err, "rating %d must be rejected", value)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
}

func TestRating_Confidence(t *testing.T) {
	tests := []struct {
		value      int
		confidence float64
	}{
		{1, 0.2},
		{3, 0.6},
		{5, 1.0},
	}

	for _, tt := range tests {
		r := &Rating{Value: tt.value}
		assert.InDelta(t, tt.confidence, r.Confidence(), 1e-9)
	}
}
