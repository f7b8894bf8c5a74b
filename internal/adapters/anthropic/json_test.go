package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwise/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		raw, err := ExtractJSON(`{"a": 1}`)
		require.NoError(t, err)
		assert.Equal(t, `{"a": 1}`, raw)
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		raw, err := ExtractJSON("Sure, here you go:\n{\"a\": 1}\nAnything else?")
		require.NoError(t, err)
		assert.Equal(t, `{"a": 1}`, raw)
	})

	t.Run("nested objects", func(t *testing.T) {
		raw, err := ExtractJSON(`prefix {"a": {"b": {"c": 3}}} suffix`)
		require.NoError(t, err)
		assert.Equal(t, `{"a": {"b": {"c": 3}}}`, raw)
	})

	t.Run("braces inside strings ignored", func(t *testing.T) {
		raw, err := ExtractJSON(`{"note": "use { and } carefully"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"note": "use { and } carefully"}`, raw)
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		raw, err := ExtractJSON(`{"note": "a \"quoted\" brace }"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"note": "a \"quoted\" brace }"}`, raw)
	})

	t.Run("first object wins", func(t *testing.T) {
		raw, err := ExtractJSON(`{"first": 1} {"second": 2}`)
		require.NoError(t, err)
		assert.Equal(t, `{"first": 1}`, raw)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := ExtractJSON("no json here")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
	})

	t.Run("unbalanced object", func(t *testing.T) {
		_, err := ExtractJSON(`{"a": {"b": 1}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
	})
}
