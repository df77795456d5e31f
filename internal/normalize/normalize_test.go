package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inmofeed/internal/models"
	"inmofeed/internal/overrides"
	"inmofeed/internal/source"
)

func loadOverrides(t *testing.T, body string) *overrides.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	ov, err := overrides.Load(path)
	require.NoError(t, err)
	return ov
}

func TestScalePrice(t *testing.T) {
	n := New(nil, nil)

	cases := []struct {
		name string
		raw  any
		want float64
	}{
		{"abbreviated thousands is scaled", "250", 250000},
		{"just under the threshold is scaled", "9999", 9999000},
		{"threshold itself passes through", "10000", 10000},
		{"full price passes through", "450000", 450000},
		{"zero stays zero", "0", 0},
		{"negative clamps to zero", "-5", 0},
		{"numeric value also works", float64(250), 250000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := n.FromWooCommerce(source.Raw{"id": 77, "price": tc.raw})
			assert.Equal(t, tc.want, p.Price)
		})
	}
}

func TestResolutionChain(t *testing.T) {
	t.Run("structured value wins", func(t *testing.T) {
		n := New(nil, nil)
		p := n.FromMongo(source.Raw{
			"_id":         "a1",
			"bedrooms":    float64(4),
			"description": "Piso de 3 habitaciones",
		})
		assert.Equal(t, 4, p.Bedrooms)
	})

	t.Run("description regex is the second tier", func(t *testing.T) {
		n := New(nil, nil)
		p := n.FromMongo(source.Raw{
			"_id":         "a1",
			"description": "Amplio piso de 3 habitaciones con 2 baños y 95 m2 en planta 5",
		})
		assert.Equal(t, 3, p.Bedrooms)
		assert.Equal(t, 2, p.Bathrooms)
		assert.Equal(t, 95, p.Area)
		assert.Equal(t, 5, p.Floor)
	})

	t.Run("english descriptions match too", func(t *testing.T) {
		n := New(nil, nil)
		p := n.FromMongo(source.Raw{
			"_id":         "a1",
			"description": "Spacious flat, 3 bedrooms, 2 bathrooms, 95 sqm",
		})
		assert.Equal(t, 3, p.Bedrooms)
		assert.Equal(t, 2, p.Bathrooms)
		assert.Equal(t, 95, p.Area)
	})

	t.Run("override table is the third tier", func(t *testing.T) {
		ov := loadOverrides(t, `{"mongodb": {"a1": {"bedrooms": 5, "address": "Calle Mayor 1"}}}`)
		n := New(ov, nil)
		p := n.FromMongo(source.Raw{"_id": "a1", "description": "sin datos"})
		assert.Equal(t, 5, p.Bedrooms)
		assert.Equal(t, "Calle Mayor 1", p.Address)
	})

	t.Run("defaults are the last tier", func(t *testing.T) {
		n := New(nil, nil)
		p := n.FromMongo(source.Raw{"_id": "a1"})
		assert.Equal(t, defaultBedrooms, p.Bedrooms)
		assert.Equal(t, defaultBathrooms, p.Bathrooms)
		assert.Equal(t, defaultArea, p.Area)
		assert.Equal(t, defaultFloor, p.Floor)
	})

	t.Run("zero structured value counts as missing", func(t *testing.T) {
		n := New(nil, nil)
		p := n.FromMongo(source.Raw{"_id": "a1", "bedrooms": float64(0)})
		assert.Equal(t, defaultBedrooms, p.Bedrooms)
	})
}

func TestNormalizationIsTotal(t *testing.T) {
	n := New(nil, nil)

	t.Run("nil record", func(t *testing.T) {
		p := n.FromMongo(nil)
		assert.Equal(t, defaultTitle, p.Title)
		assert.Equal(t, defaultDescription, p.Description)
		assert.Equal(t, defaultBedrooms, p.Bedrooms)
		assert.Empty(t, p.ID)
	})

	t.Run("malformed field types", func(t *testing.T) {
		p := n.FromWooCommerce(source.Raw{
			"id":     77,
			"name":   float64(12),
			"price":  "not-a-number",
			"images": "not-a-list",
		})
		assert.Equal(t, "77", p.ID)
		assert.Equal(t, defaultTitle, p.Title)
		assert.Equal(t, float64(0), p.Price)
		assert.Empty(t, p.Images)
	})

	t.Run("negative mongo price clamps to zero", func(t *testing.T) {
		p := n.FromMongo(source.Raw{"_id": "a1", "price": float64(-100)})
		assert.Equal(t, float64(0), p.Price)
	})
}

func TestFromWooCommerce(t *testing.T) {
	n := New(nil, nil)

	t.Run("reads listing fields from meta_data", func(t *testing.T) {
		p := n.FromWooCommerce(source.Raw{
			"id":   77,
			"name": "Casa Norte",
			"meta_data": []any{
				map[string]any{"key": "bedrooms", "value": "4"},
				map[string]any{"key": "area", "value": float64(120)},
				map[string]any{"key": "address", "value": "Avenida del Puerto 12"},
			},
		})
		assert.Equal(t, 4, p.Bedrooms)
		assert.Equal(t, 120, p.Area)
		assert.Equal(t, "Avenida del Puerto 12", p.Address)
	})

	t.Run("maps images, categories and tags", func(t *testing.T) {
		p := n.FromWooCommerce(source.Raw{
			"id":   77,
			"name": "Casa Norte",
			"images": []any{
				map[string]any{"src": "https://cdn.example.com/1.jpg", "alt": ""},
			},
			"categories": []any{map[string]any{"id": float64(1), "name": "Venta"}},
			"tags":       []any{map[string]any{"id": float64(2), "name": "Piscina"}},
		})
		require.Len(t, p.Images, 1)
		assert.Equal(t, "https://cdn.example.com/1.jpg", p.Images[0].Src)
		assert.Equal(t, "Casa Norte", p.Images[0].Alt)
		assert.Equal(t, []string{"Venta"}, p.Categories)
		assert.Equal(t, []string{"Piscina"}, p.Features)
	})

	t.Run("falls back to short_description", func(t *testing.T) {
		p := n.FromWooCommerce(source.Raw{
			"id":                77,
			"short_description": "Chalet con jardín",
		})
		assert.Equal(t, "Chalet con jardín", p.Description)
	})

	t.Run("parses dates", func(t *testing.T) {
		p := n.FromWooCommerce(source.Raw{
			"id":           77,
			"date_created": "2024-05-01T10:30:00",
		})
		assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), p.CreatedAt)
	})
}

func TestAddressSanity(t *testing.T) {
	t.Run("demo-content place names are discarded", func(t *testing.T) {
		ov := loadOverrides(t, `{"woocommerce": {"77": {"address": "Paseo Marítimo 3"}}}`)
		n := New(ov, nil)
		p := n.FromWooCommerce(source.Raw{
			"id": 77,
			"meta_data": []any{
				map[string]any{"key": "address", "value": "123 Fake St, Sydney, Australia"},
			},
		})
		assert.Equal(t, "Paseo Marítimo 3", p.Address)
	})

	t.Run("plausible addresses pass", func(t *testing.T) {
		n := New(nil, nil)
		p := n.FromMongo(source.Raw{"_id": "a1", "address": "Calle Luna 8, Valencia"})
		assert.Equal(t, "Calle Luna 8, Valencia", p.Address)
	})
}

func TestMongoID(t *testing.T) {
	n := New(nil, nil)
	oid := primitive.NewObjectID()

	cases := []struct {
		name string
		id   any
		want string
	}{
		{"hex string", "64b1f0c2e4a9d83f5b7c1a2e", "64b1f0c2e4a9d83f5b7c1a2e"},
		{"driver ObjectID", oid, oid.Hex()},
		{"extended JSON", map[string]any{"$oid": "64b1f0c2e4a9d83f5b7c1a2e"}, "64b1f0c2e4a9d83f5b7c1a2e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := n.FromMongo(source.Raw{"_id": tc.id})
			assert.Equal(t, tc.want, p.ID)
		})
	}
}

func TestGuessSource(t *testing.T) {
	assert.Equal(t, models.SourceMongoDB, GuessSource("64b1f0c2e4a9d83f5b7c1a2e"))
	assert.Equal(t, models.SourceWooCommerce, GuessSource("77"))
	assert.Equal(t, models.SourceWooCommerce, GuessSource("not-an-objectid"))
}
