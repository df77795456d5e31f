package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("first success wins and later candidates are not tried", func(t *testing.T) {
		var tried []string
		candidate := func(name, value string, err error) Candidate[string] {
			return Candidate[string]{
				Name: name,
				Fetch: func(ctx context.Context) (string, error) {
					tried = append(tried, name)
					return value, err
				},
			}
		}

		got, via, ok := Resolve(ctx, Chain[string]{},
			candidate("primary", "from-primary", nil),
			candidate("secondary", "from-secondary", nil),
		)
		assert.True(t, ok)
		assert.Equal(t, "from-primary", got)
		assert.Equal(t, "primary", via)
		assert.Equal(t, []string{"primary"}, tried)
	})

	t.Run("failed candidates are skipped in order", func(t *testing.T) {
		var tried []string
		got, via, ok := Resolve(ctx, Chain[string]{},
			Candidate[string]{Name: "a", Fetch: func(ctx context.Context) (string, error) {
				tried = append(tried, "a")
				return "", errors.New("down")
			}},
			Candidate[string]{Name: "b", Fetch: func(ctx context.Context) (string, error) {
				tried = append(tried, "b")
				return "from-b", nil
			}},
		)
		assert.True(t, ok)
		assert.Equal(t, "from-b", got)
		assert.Equal(t, "b", via)
		assert.Equal(t, []string{"a", "b"}, tried)
	})

	t.Run("invalid results are rejected by the Valid hook", func(t *testing.T) {
		got, via, ok := Resolve(ctx, Chain[string]{
			Valid: func(s string) bool { return s != "" },
		},
			Candidate[string]{Name: "empty", Fetch: func(ctx context.Context) (string, error) {
				return "", nil
			}},
			Candidate[string]{Name: "full", Fetch: func(ctx context.Context) (string, error) {
				return "value", nil
			}},
		)
		assert.True(t, ok)
		assert.Equal(t, "value", got)
		assert.Equal(t, "full", via)
	})

	t.Run("exhaustion serves the static fallback", func(t *testing.T) {
		got, via, ok := Resolve(ctx, Chain[string]{Fallback: "static"},
			Candidate[string]{Name: "a", Fetch: func(ctx context.Context) (string, error) {
				return "", errors.New("down")
			}},
			Candidate[string]{Name: "b", Fetch: func(ctx context.Context) (string, error) {
				return "", errors.New("also down")
			}},
		)
		assert.False(t, ok)
		assert.Equal(t, "static", got)
		assert.Empty(t, via)
	})

	t.Run("no candidates at all still returns the fallback", func(t *testing.T) {
		got, _, ok := Resolve(ctx, Chain[int]{Fallback: 42})
		assert.False(t, ok)
		assert.Equal(t, 42, got)
	})

	t.Run("candidate timeout is honored", func(t *testing.T) {
		got, _, ok := Resolve(ctx, Chain[string]{Timeout: 10 * time.Millisecond, Fallback: "static"},
			Candidate[string]{Name: "slow", Fetch: func(ctx context.Context) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}},
		)
		assert.False(t, ok)
		assert.Equal(t, "static", got)
	})
}
