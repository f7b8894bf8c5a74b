package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwise/internal/domain/benchmark"
	"devwise/internal/domain/lineitem"
	"devwise/internal/testsupport"
	"devwise/pkg/errors"
)

func TestLineItemRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	helper := testsupport.NewTestPostgres(t)
	repo := NewLineItemRepository(helper.Tx())
	ctx := context.Background()

	userID := uuid.New()
	projectID := insertTestProject(t, helper.Tx(), userID)
	proposalID := insertTestProposal(t, helper.Tx(), userID, projectID)

	unit := "LF"
	quantity := 100.0
	unitPrice := 55.0
	first := &lineitem.LineItem{
		ID:          uuid.New(),
		ProposalID:  proposalID,
		UserID:      userID,
		Description: "Concrete Footings",
		Unit:        &unit,
		Quantity:    &quantity,
		UnitPrice:   &unitPrice,
		TotalPrice:  5500,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	second := &lineitem.LineItem{
		ID:          uuid.New(),
		ProposalID:  proposalID,
		UserID:      userID,
		Description: "Site Cleanup",
		TotalPrice:  1200,
		CreatedAt:   time.Now().Add(time.Second),
		UpdatedAt:   time.Now().Add(time.Second),
	}

	t.Run("insert batch and list by proposal", func(t *testing.T) {
		require.NoError(t, repo.InsertBatch(ctx, []*lineitem.LineItem{first, second}))

		items, err := repo.ListByProposal(ctx, proposalID, userID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Concrete Footings", items[0].Description)
		assert.Equal(t, "Site Cleanup", items[1].Description)
	})

	t.Run("get is scoped to owner", func(t *testing.T) {
		got, err := repo.GetByIDForUser(ctx, first.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		_, err = repo.GetByIDForUser(ctx, first.ID, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("update persists edits and originals", func(t *testing.T) {
		got, err := repo.GetByIDForUser(ctx, first.ID, userID)
		require.NoError(t, err)

		got.CaptureOriginals()
		got.Description = "Concrete Footings, reinforced"
		newQuantity := 110.0
		got.Quantity = &newQuantity
		got.TotalPrice = 6050
		got.IsEdited = true
		require.NoError(t, repo.Update(ctx, got))

		updated, err := repo.GetByIDForUser(ctx, first.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, "Concrete Footings, reinforced", updated.Description)
		assert.Equal(t, 6050.0, updated.TotalPrice)
		assert.True(t, updated.IsEdited)
		require.NotNil(t, updated.OriginalDescription)
		assert.Equal(t, "Concrete Footings", *updated.OriginalDescription)
		require.NotNil(t, updated.OriginalTotalPrice)
		assert.Equal(t, 5500.0, *updated.OriginalTotalPrice)
	})

	t.Run("market fields written separately", func(t *testing.T) {
		researchedAt := time.Now()
		err := repo.UpdateMarketFields(ctx, second.ID, lineitem.MarketFields{
			MarketAvg:       1000,
			VariancePercent: 20,
			FlagColor:       benchmark.FlagYellow,
			ResearchedAt:    researchedAt,
		})
		require.NoError(t, err)

		got, err := repo.GetByIDForUser(ctx, second.ID, userID)
		require.NoError(t, err)
		require.NotNil(t, got.MarketAvg)
		assert.Equal(t, 1000.0, *got.MarketAvg)
		require.NotNil(t, got.VariancePercent)
		assert.Equal(t, 20.0, *got.VariancePercent)
		require.NotNil(t, got.FlagColor)
		assert.Equal(t, benchmark.FlagYellow, *got.FlagColor)
		assert.NotNil(t, got.LastResearchedAt)
	})

	t.Run("update for unknown item is not found", func(t *testing.T) {
		missing := &lineitem.LineItem{ID: uuid.New(), UserID: userID, Description: "x"}
		err := repo.Update(ctx, missing)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}
