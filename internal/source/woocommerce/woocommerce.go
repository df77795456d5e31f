// Package woocommerce adapts a WooCommerce product catalog to the source
// contract. Properties are published as products with listing fields stored
// in meta_data key/value pairs.
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"inmofeed/internal/httputil"
	"inmofeed/internal/models"
	"inmofeed/internal/source"
)

// maxPages caps the catalog crawl; listings beyond perPage*maxPages are not
// fetched. See the aggregator's truncation flag.
const maxPages = 3

// Adapter fetches products from a WooCommerce REST API using query-string
// consumer credentials.
type Adapter struct {
	baseURL    string
	key        string
	secret     string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	perPage    int
}

// Options configures a WooCommerce adapter.
type Options struct {
	BaseURL        string // e.g. https://example.com/wp-json/wc/v3
	ConsumerKey    string
	ConsumerSecret string
	Client         *http.Client
	Limiter        *rate.Limiter // optional outbound rate limit
	MaxRetries     int
	PerPage        int // page size per upstream call, default 100
}

func New(opts Options) (*Adapter, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("woocommerce: BaseURL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("woocommerce: invalid BaseURL: %w", err)
	}
	client := opts.Client
	if client == nil {
		client = httputil.NewClient(0)
	}
	perPage := opts.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	return &Adapter{
		baseURL:    base,
		key:        opts.ConsumerKey,
		secret:     opts.ConsumerSecret,
		client:     client,
		limiter:    opts.Limiter,
		maxRetries: opts.MaxRetries,
		perPage:    perPage,
	}, nil
}

func (a *Adapter) Name() models.SourceID { return models.SourceWooCommerce }

// FetchAll walks the published-product pages newest first, up to maxPages,
// collecting at most limit records.
func (a *Adapter) FetchAll(ctx context.Context, limit int) ([]source.Raw, error) {
	if limit <= 0 {
		limit = a.perPage
	}
	per := a.perPage
	if limit < per {
		per = limit
	}

	var out []source.Raw
	for page := 1; page <= maxPages; page++ {
		if err := a.wait(ctx); err != nil {
			return out, err
		}
		body, status, err := httputil.Get(ctx, a.client, a.productsURL(per, page), a.maxRetries)
		if err != nil {
			return nil, classify(status, err)
		}
		var batch []source.Raw
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("woocommerce: decode products page %d: %w", page, err)
		}
		out = append(out, batch...)
		if len(batch) < per || len(out) >= limit {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FetchByID fetches a single product.
func (a *Adapter) FetchByID(ctx context.Context, id string) (source.Raw, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("woocommerce: non-numeric id %q: %w", id, source.ErrNotFound)
	}
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/products/%s?%s", a.baseURL, url.PathEscape(id), a.auth().Encode())
	body, status, err := httputil.Get(ctx, a.client, u, a.maxRetries)
	if err != nil {
		return nil, classify(status, err)
	}
	var raw source.Raw
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("woocommerce: decode product %s: %w", id, err)
	}
	return raw, nil
}

func (a *Adapter) productsURL(perPage, page int) string {
	q := a.auth()
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("status", "publish")
	q.Set("orderby", "date")
	q.Set("order", "desc")
	return a.baseURL + "/products?" + q.Encode()
}

func (a *Adapter) auth() url.Values {
	q := url.Values{}
	q.Set("consumer_key", a.key)
	q.Set("consumer_secret", a.secret)
	return q
}

func (a *Adapter) wait(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.Wait(ctx)
}

// classify maps upstream status codes onto the source sentinel errors.
func classify(status int, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("woocommerce: %w: %v", source.ErrBadCredentials, err)
	case http.StatusNotFound:
		return fmt.Errorf("woocommerce: %w", source.ErrNotFound)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("woocommerce: %w: %v", source.ErrUnavailable, err)
	default:
		return fmt.Errorf("woocommerce: %w", err)
	}
}
