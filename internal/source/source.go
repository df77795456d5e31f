// Package source defines the contract shared by all upstream property
// backends. Adapters return raw JSON-decoded records; shaping them into the
// canonical schema is the normalizer's job.
package source

import (
	"context"
	"errors"

	"inmofeed/internal/models"
)

var (
	// ErrNotFound means the backend answered but has no such record.
	ErrNotFound = errors.New("record not found")

	// ErrBadCredentials means the backend rejected our credentials. Surfaced
	// in logs as a configuration problem; the aggregator degrades to an empty
	// result rather than crashing.
	ErrBadCredentials = errors.New("upstream rejected credentials")

	// ErrUnavailable means the backend is temporarily down (503 or similar).
	ErrUnavailable = errors.New("upstream unavailable")
)

// Raw is one undecoded upstream record.
type Raw = map[string]any

// Source is a property backend adapter.
type Source interface {
	Name() models.SourceID

	// FetchAll returns up to limit raw records, newest first where the
	// backend supports ordering.
	FetchAll(ctx context.Context, limit int) ([]Raw, error)

	// FetchByID returns a single raw record or ErrNotFound.
	FetchByID(ctx context.Context, id string) (Raw, error)
}
