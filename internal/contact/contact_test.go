package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmofeed/internal/models"
)

func TestSend(t *testing.T) {
	ctx := context.Background()
	msg := models.ContactMessage{
		Name:    "Ana",
		Email:   "ana@example.com",
		Message: "Quiero visitar el piso",
	}

	t.Run("delivers the payload to every channel", func(t *testing.T) {
		var received atomic.Int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Add(1)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var got models.ContactMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "ana@example.com", got.Email)
			w.WriteHeader(http.StatusOK)
		})
		a := httptest.NewServer(handler)
		defer a.Close()
		b := httptest.NewServer(handler)
		defer b.Close()

		relay := New([]string{a.URL, b.URL}, a.Client(), nil)
		assert.Equal(t, 2, relay.Send(ctx, msg))
		assert.Equal(t, int32(2), received.Load())
	})

	t.Run("a failed channel does not block the others", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer down.Close()
		up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer up.Close()

		relay := New([]string{down.URL, up.URL}, up.Client(), nil)
		assert.Equal(t, 1, relay.Send(ctx, msg))
	})

	t.Run("no channels means zero deliveries, not a panic", func(t *testing.T) {
		relay := New(nil, nil, nil)
		assert.Zero(t, relay.Send(ctx, msg))
	})
}
