package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmofeed/internal/models"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads per-source tables", func(t *testing.T) {
		s, err := Load(writeFile(t, `{
			"woocommerce": {"77": {"bedrooms": 3, "address": "Calle Mayor 1"}},
			"mongodb": {"64b1f0c2e4a9d83f5b7c1a2e": {"area": 120}}
		}`))
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())

		ov, ok := s.Lookup(models.SourceWooCommerce, "77")
		require.True(t, ok)
		assert.Equal(t, 3, ov.Bedrooms)
		assert.Equal(t, "Calle Mayor 1", ov.Address)

		ov, ok = s.Lookup(models.SourceMongoDB, "64b1f0c2e4a9d83f5b7c1a2e")
		require.True(t, ok)
		assert.Equal(t, 120, ov.Area)
	})

	t.Run("unknown source is rejected", func(t *testing.T) {
		_, err := Load(writeFile(t, `{"sqlite": {"1": {"bedrooms": 3}}}`))
		assert.ErrorContains(t, err, "unknown source")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writeFile(t, `{broken`))
		assert.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	t.Run("miss on the wrong source", func(t *testing.T) {
		s, err := Load(writeFile(t, `{"woocommerce": {"77": {"bedrooms": 3}}}`))
		require.NoError(t, err)

		_, ok := s.Lookup(models.SourceMongoDB, "77")
		assert.False(t, ok)
	})

	t.Run("empty store misses everything", func(t *testing.T) {
		_, ok := Empty().Lookup(models.SourceWooCommerce, "77")
		assert.False(t, ok)
		assert.Zero(t, Empty().Len())
	})
}
