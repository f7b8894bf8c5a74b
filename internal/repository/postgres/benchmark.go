package postgres

import (
	"context"
	"database/sql"

	"devwise/internal/domain/benchmark"
	"devwise/pkg/errors"
)

// Compile-time check that we implement the interface
var _ benchmark.Repository = (*BenchmarkRepository)(nil)

// BenchmarkRepository implements benchmark.Repository using sqlx
type BenchmarkRepository struct {
	db DBTX
}

// NewBenchmarkRepository creates a new benchmark repository
func NewBenchmarkRepository(db DBTX) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

const benchmarkColumns = `
	id, item_category, item_description_normalized, region, project_type,
	quality_level, unit, unit_price, total_price, year, quarter,
	confidence_score, source, created_at`

// GetExact retrieves the benchmark for the key in the given year and quarter
func (r *BenchmarkRepository) GetExact(ctx context.Context, key benchmark.Key, year, quarter int) (*benchmark.Benchmark, error) {
	query := `
		SELECT ` + benchmarkColumns + `
		FROM cost_benchmarks
		WHERE item_category = $1
		  AND item_description_normalized = $2
		  AND region = $3
		  AND year = $4
		  AND quarter = $5
		LIMIT 1`

	var b benchmark.Benchmark
	err := r.db.GetContext(ctx, &b, query,
		key.Category, key.DescriptionNormalized, key.Region, year, quarter)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "benchmark not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get benchmark")
	}

	return &b, nil
}

// GetLatestInYear retrieves the highest-quarter benchmark for the key in the year
func (r *BenchmarkRepository) GetLatestInYear(ctx context.Context, key benchmark.Key, year int) (*benchmark.Benchmark, error) {
	query := `
		SELECT ` + benchmarkColumns + `
		FROM cost_benchmarks
		WHERE item_category = $1
		  AND item_description_normalized = $2
		  AND region = $3
		  AND year = $4
		ORDER BY quarter DESC
		LIMIT 1`

	var b benchmark.Benchmark
	err := r.db.GetContext(ctx, &b, query,
		key.Category, key.DescriptionNormalized, key.Region, year)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "benchmark not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get benchmark")
	}

	return &b, nil
}

// Upsert inserts the benchmark or overwrites the row with the same
// (category, description, region, year, quarter)
func (r *BenchmarkRepository) Upsert(ctx context.Context, b *benchmark.Benchmark) error {
	query := `
		INSERT INTO cost_benchmarks (
			id, item_category, item_description_normalized, region, project_type,
			quality_level, unit, unit_price, total_price, year, quarter,
			confidence_score, source, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (item_category, item_description_normalized, region, year, quarter)
		DO UPDATE SET
			project_type = EXCLUDED.project_type,
			quality_level = EXCLUDED.quality_level,
			unit = EXCLUDED.unit,
			unit_price = EXCLUDED.unit_price,
			total_price = EXCLUDED.total_price,
			confidence_score = EXCLUDED.confidence_score,
			source = EXCLUDED.source`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Category, b.DescriptionNormalized, b.Region, b.ProjectType,
		b.QualityLevel, b.Unit, b.UnitPrice, b.TotalPrice, b.Year, b.Quarter,
		b.ConfidenceScore, b.Source, b.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert benchmark")
	}

	return nil
}
