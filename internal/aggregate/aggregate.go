// Package aggregate merges property records from all configured sources into
// one paginated, cached, canonical list. Partial upstream failure degrades
// the result instead of failing it: each source that errors contributes an
// empty list and an entry in the result's Errors.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inmofeed/internal/cache"
	"inmofeed/internal/fallback"
	"inmofeed/internal/models"
	"inmofeed/internal/normalize"
	"inmofeed/internal/source"
)

// Result is one aggregated page.
type Result struct {
	Properties []models.Property       `json:"properties"`
	Total      int                     `json:"total"`
	Counts     map[models.SourceID]int `json:"counts"`
	Errors     []models.SourceError    `json:"errors,omitempty"`
	Truncated  bool                    `json:"truncated,omitempty"`
}

// Aggregator fans out to the source adapters, normalizes, dedups, paginates,
// and memoizes.
type Aggregator struct {
	sources       []source.Source
	norm          *normalize.Normalizer
	cache         cache.Cache
	listTTL       time.Duration
	kvTTL         time.Duration
	sourceTimeout time.Duration
	pageSize      int
	log           *zap.SugaredLogger
}

type Options struct {
	Sources []source.Source
	Norm    *normalize.Normalizer
	Cache   cache.Cache

	// ListTTL bounds the freshness of aggregated pages (default 5m); KVTTL
	// applies to single-property entries (default 30m).
	ListTTL time.Duration
	KVTTL   time.Duration

	// SourceTimeout bounds each adapter call independently, so cancelling
	// one never cancels its sibling (default 15s).
	SourceTimeout time.Duration

	// PageSize is the per-source fetch cap. Aggregated pagination is an
	// in-memory slice over at most len(sources)*PageSize records; listings
	// beyond that are not served and the result is flagged Truncated.
	PageSize int

	Log *zap.SugaredLogger
}

func New(opts Options) *Aggregator {
	a := &Aggregator{
		sources:       opts.Sources,
		norm:          opts.Norm,
		cache:         opts.Cache,
		listTTL:       opts.ListTTL,
		kvTTL:         opts.KVTTL,
		sourceTimeout: opts.SourceTimeout,
		pageSize:      opts.PageSize,
		log:           opts.Log,
	}
	if a.cache == nil {
		a.cache = cache.NewMemory(nil)
	}
	if a.listTTL <= 0 {
		a.listTTL = 5 * time.Minute
	}
	if a.kvTTL <= 0 {
		a.kvTTL = 30 * time.Minute
	}
	if a.sourceTimeout <= 0 {
		a.sourceTimeout = 15 * time.Second
	}
	if a.pageSize <= 0 {
		a.pageSize = 100
	}
	if a.log == nil {
		a.log = zap.NewNop().Sugar()
	}
	return a
}

// GetProperties returns one page of the merged listing set. Results are
// cached per (page, limit).
func (a *Aggregator) GetProperties(ctx context.Context, page, limit int) (Result, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 12
	}
	if limit > a.pageSize {
		limit = a.pageSize
	}

	key := fmt.Sprintf("properties:%d:%d", page, limit)
	var cached Result
	if hit, err := a.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		a.log.Warnw("cache read failed", "key", key, "error", err)
	}

	merged, counts, srcErrs, truncated := a.fetchMerged(ctx)

	start := (page - 1) * limit
	end := start + limit
	if start > len(merged) {
		start = len(merged)
	}
	if end > len(merged) {
		end = len(merged)
	}

	result := Result{
		Properties: merged[start:end],
		Total:      len(merged),
		Counts:     counts,
		Errors:     srcErrs,
		Truncated:  truncated,
	}
	if err := a.cache.Set(ctx, key, result, a.listTTL); err != nil {
		a.log.Warnw("cache write failed", "key", key, "error", err)
	}
	return result, nil
}

// fetchMerged issues all source calls concurrently and settles them
// independently: a failed source is logged and recorded, never propagated.
func (a *Aggregator) fetchMerged(ctx context.Context) ([]models.Property, map[models.SourceID]int, []models.SourceError, bool) {
	type settled struct {
		src models.SourceID
		raw []source.Raw
		err error
	}
	results := make([]settled, len(a.sources))

	var g errgroup.Group
	for i, s := range a.sources {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()
			raw, err := s.FetchAll(callCtx, a.pageSize)
			results[i] = settled{src: s.Name(), raw: raw, err: err}
			return nil
		})
	}
	g.Wait()

	var (
		merged    []models.Property
		srcErrs   []models.SourceError
		truncated bool
		counts    = map[models.SourceID]int{}
		seen      = map[string]struct{}{}
	)
	for _, r := range results {
		if r.err != nil {
			a.log.Errorw("source fetch failed", "source", r.src, "error", r.err)
			srcErrs = append(srcErrs, models.SourceError{Source: r.src, Reason: r.err.Error()})
			continue
		}
		if len(r.raw) >= a.pageSize {
			truncated = true
		}
		for _, raw := range r.raw {
			p := a.norm.Normalize(r.src, raw)
			if p.ID == "" {
				continue
			}
			// Ids should never collide across sources; dedup is defensive.
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
			counts[p.Source]++
		}
	}
	return merged, counts, srcErrs, truncated
}

// GetProperty resolves a single listing through a fallback chain: the hinted
// (or id-shape-guessed) source first, then the remaining sources, then a
// scan of the aggregated list. The boolean reports whether the property was
// found.
func (a *Aggregator) GetProperty(ctx context.Context, id string, hint models.SourceID) (models.Property, bool) {
	key := "property:" + id
	var cached models.Property
	if hit, err := a.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true
	}

	if !hint.Valid() {
		hint = normalize.GuessSource(id)
	}

	var candidates []fallback.Candidate[models.Property]
	for _, s := range a.orderedByHint(hint) {
		candidates = append(candidates, fallback.Candidate[models.Property]{
			Name: string(s.Name()),
			Fetch: func(ctx context.Context) (models.Property, error) {
				raw, err := s.FetchByID(ctx, id)
				if err != nil {
					return models.Property{}, err
				}
				return a.norm.Normalize(s.Name(), raw), nil
			},
		})
	}
	candidates = append(candidates, fallback.Candidate[models.Property]{
		Name: "aggregated-scan",
		Fetch: func(ctx context.Context) (models.Property, error) {
			merged, _, _, _ := a.fetchMerged(ctx)
			for _, p := range merged {
				if p.ID == id {
					return p, nil
				}
			}
			return models.Property{}, source.ErrNotFound
		},
	})

	p, via, ok := fallback.Resolve(ctx, fallback.Chain[models.Property]{
		Timeout: a.sourceTimeout,
		Valid:   func(p models.Property) bool { return p.ID != "" },
		Log:     a.log,
	}, candidates...)
	if !ok {
		return models.Property{}, false
	}
	a.log.Infow("property resolved", "id", id, "via", via)
	if err := a.cache.Set(ctx, key, p, a.kvTTL); err != nil {
		a.log.Warnw("cache write failed", "key", key, "error", err)
	}
	return p, true
}

// Suggestions returns up to n alternative listings for not-found responses.
func (a *Aggregator) Suggestions(ctx context.Context, n int) []models.Property {
	if n <= 0 {
		n = 3
	}
	result, err := a.GetProperties(ctx, 1, n)
	if err != nil {
		return nil
	}
	return result.Properties
}

func (a *Aggregator) orderedByHint(hint models.SourceID) []source.Source {
	ordered := make([]source.Source, 0, len(a.sources))
	for _, s := range a.sources {
		if s.Name() == hint {
			ordered = append(ordered, s)
		}
	}
	for _, s := range a.sources {
		if s.Name() != hint {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
