package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwise/pkg/errors"
)

func TestHeaderIdentity_UserID(t *testing.T) {
	identity := NewHeaderIdentity()

	t.Run("valid header", func(t *testing.T) {
		want := uuid.New()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-User-ID", want.String())

		got, err := identity.UserID(r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := identity.UserID(r)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-User-ID", "not-a-uuid")

		_, err := identity.UserID(r)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	})
}
