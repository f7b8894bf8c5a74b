package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwise/internal/testsupport"
)

func TestRedisLimiter_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testsupport.LoadDatabaseConfigsFromEnv(t)
	client := testsupport.NewRedisClient(t, cfg.Redis)
	limiter := NewRedisLimiter(client)
	ctx := context.Background()

	t.Run("quota consumed per window", func(t *testing.T) {
		identifier := "extract:" + uuid.NewString()

		for i := 0; i < 5; i++ {
			result, err := limiter.Allow(ctx, identifier, 5, time.Hour)
			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, 4-i, result.Remaining)
		}

		result, err := limiter.Allow(ctx, identifier, 5, time.Hour)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 0, result.Remaining)
		assert.WithinDuration(t, time.Now().Add(time.Hour), result.ResetAt, 5*time.Second)
	})

	t.Run("identifiers are independent", func(t *testing.T) {
		userID := uuid.NewString()

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, "upload:"+userID, 3, time.Hour)
			require.NoError(t, err)
		}
		denied, err := limiter.Allow(ctx, "upload:"+userID, 3, time.Hour)
		require.NoError(t, err)
		assert.False(t, denied.Allowed)

		fresh, err := limiter.Allow(ctx, "research:"+userID, 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh.Allowed)
	})

	t.Run("window expiry resets quota", func(t *testing.T) {
		identifier := "extract:" + uuid.NewString()

		_, err := limiter.Allow(ctx, identifier, 1, time.Second)
		require.NoError(t, err)
		denied, err := limiter.Allow(ctx, identifier, 1, time.Second)
		require.NoError(t, err)
		assert.False(t, denied.Allowed)

		time.Sleep(1100 * time.Millisecond)

		result, err := limiter.Allow(ctx, identifier, 1, time.Second)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})
}
