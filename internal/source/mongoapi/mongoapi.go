// Package mongoapi adapts the proprietary REST endpoint that fronts the
// listings MongoDB ({base}/property and {base}/property/:id).
package mongoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"inmofeed/internal/httputil"
	"inmofeed/internal/models"
	"inmofeed/internal/source"
)

// Adapter fetches raw property documents from the Mongo-fronting API.
type Adapter struct {
	baseURL    string
	client     *http.Client
	maxRetries int
}

type Options struct {
	BaseURL    string
	Client     *http.Client
	MaxRetries int
}

func New(opts Options) (*Adapter, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("mongoapi: BaseURL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("mongoapi: invalid BaseURL: %w", err)
	}
	client := opts.Client
	if client == nil {
		client = httputil.NewClient(0)
	}
	return &Adapter{baseURL: base, client: client, maxRetries: opts.MaxRetries}, nil
}

func (a *Adapter) Name() models.SourceID { return models.SourceMongoDB }

// FetchAll returns the full property collection; the API has no pagination,
// so the limit is applied client-side.
func (a *Adapter) FetchAll(ctx context.Context, limit int) ([]source.Raw, error) {
	body, status, err := httputil.Get(ctx, a.client, a.baseURL+"/property", a.maxRetries)
	if err != nil {
		return nil, classify(status, err)
	}
	var docs []source.Raw
	if err := json.Unmarshal(body, &docs); err != nil {
		// Some deployments wrap the array in {data: [...]}.
		var wrapped struct {
			Data []source.Raw `json:"data"`
		}
		if werr := json.Unmarshal(body, &wrapped); werr != nil || wrapped.Data == nil {
			return nil, fmt.Errorf("mongoapi: decode property list: %w", err)
		}
		docs = wrapped.Data
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// FetchByID returns a single property document or ErrNotFound.
func (a *Adapter) FetchByID(ctx context.Context, id string) (source.Raw, error) {
	u := a.baseURL + "/property/" + url.PathEscape(id)
	body, status, err := httputil.Get(ctx, a.client, u, a.maxRetries)
	if err != nil {
		return nil, classify(status, err)
	}
	var doc source.Raw
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("mongoapi: decode property %s: %w", id, err)
	}
	return doc, nil
}

func classify(status int, err error) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("mongoapi: %w", source.ErrNotFound)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("mongoapi: %w: %v", source.ErrUnavailable, err)
	default:
		return fmt.Errorf("mongoapi: %w", err)
	}
}
