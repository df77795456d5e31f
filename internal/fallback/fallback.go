// Package fallback implements the ordered-candidate resolver used for single
// property lookups and blog fetches: try each candidate in turn, accept the
// first usable result, and fall back to a static payload rather than ever
// returning an error. Candidates are single-attempt by design — retry and
// fallback are orthogonal strategies layered at different call sites.
package fallback

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Candidate is one strategy in a chain. Later candidates are lower-trust
// alternatives, so order is significant.
type Candidate[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// Chain configures a resolution run.
type Chain[T any] struct {
	// Timeout bounds each candidate attempt. Zero means 8s.
	Timeout time.Duration

	// Valid decides whether a candidate's result is usable. Nil accepts
	// anything a candidate returns without error.
	Valid func(T) bool

	// Fallback is the static payload returned when every candidate fails.
	Fallback T

	Log *zap.SugaredLogger
}

// Resolve tries the candidates strictly in order and returns the first valid
// result along with the winning candidate's name. When all candidates are
// exhausted it returns (Fallback, "", false) — never an error, so callers
// always have something to serve.
func Resolve[T any](ctx context.Context, chain Chain[T], candidates ...Candidate[T]) (T, string, bool) {
	timeout := chain.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	log := chain.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	for _, c := range candidates {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := c.Fetch(attemptCtx)
		cancel()
		if err != nil {
			log.Debugw("fallback candidate failed", "candidate", c.Name, "error", err)
			continue
		}
		if chain.Valid != nil && !chain.Valid(result) {
			log.Debugw("fallback candidate returned unusable result", "candidate", c.Name)
			continue
		}
		return result, c.Name, true
	}

	log.Warnw("all fallback candidates exhausted, serving static payload",
		"candidates", len(candidates))
	return chain.Fallback, "", false
}
