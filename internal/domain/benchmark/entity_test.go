package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestBenchmark_MarketAvg(t *testing.T) {
	t.Run("prefers unit price", func(t *testing.T) {
		b := &Benchmark{UnitPrice: floatPtr(12.5), TotalPrice: floatPtr(5000)}
		assert.Equal(t, 12.5, b.MarketAvg())
	})

	t.Run("falls back to total price", func(t *testing.T) {
		b := &Benchmark{TotalPrice: floatPtr(5000)}
		assert.Equal(t, 5000.0, b.MarketAvg())
	})

	t.Run("zero unit price falls through", func(t *testing.T) {
		b := &Benchmark{UnitPrice: floatPtr(0), TotalPrice: floatPtr(5000)}
		assert.Equal(t, 5000.0, b.MarketAvg())
	})

	t.Run("no prices yields zero", func(t *testing.T) {
		b := &Benchmark{}
		assert.Equal(t, 0.0, b.MarketAvg())
	})
}

func TestBenchmark_Confidence(t *testing.T) {
	t.Run("stored score", func(t *testing.T) {
		b := &Benchmark{ConfidenceScore: floatPtr(0.95)}
		assert.Equal(t, 0.95, b.Confidence())
	})

	t.Run("missing score uses default", func(t *testing.T) {
		b := &Benchmark{}
		assert.Equal(t, DefaultConfidence, b.Confidence())
	})

	t.Run("zero score uses default", func(t *testing.T) {
		b := &Benchmark{ConfidenceScore: floatPtr(0)}
		assert.Equal(t, DefaultConfidence, b.Confidence())
	})
}

func TestBuildKey(t *testing.T) {
	key := BuildKey("03 Concrete", "Install Concrete Footings - 100 LF", "Austin", "tx", "residential", "premium")

	assert.Equal(t, "03 Concrete", key.Category)
	assert.Equal(t, "concrete_footings", key.DescriptionNormalized)
	assert.Equal(t, "austin, TX", key.Region)
	assert.Equal(t, "residential", key.ProjectType)
	assert.Equal(t, "premium", key.QualityLevel)
}

func TestBuildKey_EmptyCategoryDefaultsToGeneral(t *testing.T) {
	key := BuildKey("", "Cleanup", "Austin", "TX", "residential", "")
	assert.Equal(t, "general", key.Category)
}
