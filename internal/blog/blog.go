// Package blog proxies WordPress posts through the fallback-chain resolver.
// The site must never render an empty blog section, so exhausting every
// upstream candidate serves static sample posts instead of an error.
package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"inmofeed/internal/cache"
	"inmofeed/internal/fallback"
	"inmofeed/internal/httputil"
	"inmofeed/internal/models"
)

const excerptRunes = 200

// Service fetches and normalizes blog posts.
type Service struct {
	baseURL string
	client  *http.Client
	cache   cache.Cache
	ttl     time.Duration
	log     *zap.SugaredLogger
}

type Options struct {
	BaseURL string // WordPress site root
	Client  *http.Client
	Cache   cache.Cache
	TTL     time.Duration // default 30m
	Log     *zap.SugaredLogger
}

func New(opts Options) *Service {
	s := &Service{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		client:  opts.Client,
		cache:   opts.Cache,
		ttl:     opts.TTL,
		log:     opts.Log,
	}
	if s.client == nil {
		s.client = httputil.NewClient(0)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(nil)
	}
	if s.ttl <= 0 {
		s.ttl = 30 * time.Minute
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	return s
}

// wpPost is the WordPress REST v2 post shape.
type wpPost struct {
	ID    int    `json:"id"`
	Date  string `json:"date"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Excerpt struct {
		Rendered string `json:"rendered"`
	} `json:"excerpt"`
}

// LatestPosts returns up to limit posts, newest first. It never fails: the
// terminal fallback is a static sample set.
func (s *Service) LatestPosts(ctx context.Context, limit int) []models.BlogPost {
	if limit <= 0 {
		limit = 6
	}

	key := cache.QueryKey("posts", map[string]string{"limit": fmt.Sprint(limit)})
	var cached []models.BlogPost
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached
	}

	// Candidate order matters: the canonical REST route first, then the
	// legacy proxy path some installations expose.
	candidates := []fallback.Candidate[[]models.BlogPost]{
		s.urlCandidate("wp-v2", fmt.Sprintf("%s/wp-json/wp/v2/posts?per_page=%d", s.baseURL, limit)),
		s.urlCandidate("legacy", fmt.Sprintf("%s/posts?per_page=%d", s.baseURL, limit)),
	}

	posts, via, ok := fallback.Resolve(ctx, fallback.Chain[[]models.BlogPost]{
		Valid:    func(ps []models.BlogPost) bool { return len(ps) > 0 },
		Fallback: samplePosts(),
		Log:      s.log,
	}, candidates...)

	if ok {
		s.log.Infow("posts fetched", "via", via, "count", len(posts))
		if err := s.cache.Set(ctx, key, posts, s.ttl); err != nil {
			s.log.Warnw("cache write failed", "key", key, "error", err)
		}
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (s *Service) urlCandidate(name, url string) fallback.Candidate[[]models.BlogPost] {
	return fallback.Candidate[[]models.BlogPost]{
		Name: name,
		Fetch: func(ctx context.Context) ([]models.BlogPost, error) {
			body, _, err := httputil.GetOnce(ctx, s.client, url)
			if err != nil {
				return nil, err
			}
			var raw []wpPost
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, fmt.Errorf("blog: decode posts: %w", err)
			}
			posts := make([]models.BlogPost, 0, len(raw))
			for _, p := range raw {
				posts = append(posts, normalizePost(p))
			}
			return posts, nil
		},
	}
}

func normalizePost(p wpPost) models.BlogPost {
	published, err := time.Parse(time.RFC3339, p.Date)
	if err != nil {
		// WordPress omits the zone on local-time dates.
		published, _ = time.Parse("2006-01-02T15:04:05", p.Date)
	}
	return models.BlogPost{
		ID:          fmt.Sprint(p.ID),
		Title:       StripHTML(p.Title.Rendered),
		Excerpt:     truncate(StripHTML(p.Excerpt.Rendered), excerptRunes),
		Link:        p.Link,
		PublishedAt: published,
	}
}

// StripHTML flattens rendered WordPress HTML into plain text.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// samplePosts is the terminal fallback payload: evergreen content shown when
// WordPress is unreachable, preferred over an empty page.
func samplePosts() []models.BlogPost {
	published := time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)
	return []models.BlogPost{
		{
			ID:          "sample-1",
			Title:       "Guía para comprar tu primera vivienda en la costa",
			Excerpt:     "Todo lo que necesitas saber antes de dar el paso: financiación, gastos de compraventa y cómo elegir la zona adecuada.",
			PublishedAt: published,
		},
		{
			ID:          "sample-2",
			Title:       "Cinco reformas que más revalorizan un piso",
			Excerpt:     "Cocina, baño, aislamiento... repasamos las reformas con mejor retorno a la hora de vender.",
			PublishedAt: published.AddDate(0, -1, 0),
		},
		{
			ID:          "sample-3",
			Title:       "Qué documentos necesitas para vender tu casa",
			Excerpt:     "Nota simple, certificado energético y cédula de habitabilidad: la documentación imprescindible explicada paso a paso.",
			PublishedAt: published.AddDate(0, -2, 0),
		},
	}
}
