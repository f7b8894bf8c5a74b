package lineitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwise/pkg/errors"
)

func floatPtr(v float64) *float64 { return &v }

func TestLineItem_ValidateTotals(t *testing.T) {
	t.Run("consistent totals pass", func(t *testing.T) {
		li := &LineItem{
			Quantity:   floatPtr(10),
			UnitPrice:  floatPtr(25.5),
			TotalPrice: 255,
		}
		assert.NoError(t, li.ValidateTotals())
	})

	t.Run("sub-cent rounding tolerated", func(t *testing.T) {
		li := &LineItem{
			Quantity:   floatPtr(10),
			UnitPrice:  floatPtr(2.5),
			TotalPrice: 25.005,
		}
		assert.NoError(t, li.ValidateTotals())
	})

	t.Run("mismatch beyond tolerance fails", func(t *testing.T) {
		li := &LineItem{
			Quantity:   floatPtr(10),
			UnitPrice:  floatPtr(25),
			TotalPrice: 251,
		}
		err := li.ValidateTotals()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("negative total fails", func(t *testing.T) {
		li := &LineItem{TotalPrice: -1}
		err := li.ValidateTotals()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("missing quantity skips consistency check", func(t *testing.T) {
		li := &LineItem{UnitPrice: floatPtr(25), TotalPrice: 9999}
		assert.NoError(t, li.ValidateTotals())
	})
}

func TestLineItem_CaptureOriginals(t *testing.T) {
	t.Run("first edit snapshots values", func(t *testing.T) {
		li := &LineItem{
			Description: "Concrete Footings",
			Quantity:    floatPtr(100),
			UnitPrice:   floatPtr(45),
			TotalPrice:  4500,
		}

		li.CaptureOriginals()

		require.NotNil(t, li.OriginalDescription)
		assert.Equal(t, "Concrete Footings", *li.OriginalDescription)
		assert.Equal(t, floatPtr(100), li.OriginalQuantity)
		assert.Equal(t, floatPtr(45), li.OriginalUnitPrice)
		require.NotNil(t, li.OriginalTotalPrice)
		assert.Equal(t, 4500.0, *li.OriginalTotalPrice)
	})

	t.Run("subsequent edits keep the first snapshot", func(t *testing.T) {
		original := "Original description"
		li := &LineItem{
			Description:         "Edited description",
			TotalPrice:          999,
			OriginalDescription: &original,
			IsEdited:            true,
		}

		li.CaptureOriginals()

		assert.Equal(t, "Original description", *li.OriginalDescription)
	})
}
