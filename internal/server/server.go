// Package server exposes the aggregation layer over HTTP/JSON. Partial
// upstream failure is a 200 with an errors array, never a 5xx: the frontend
// must keep rendering in a degraded state.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"inmofeed/internal/aggregate"
	"inmofeed/internal/blog"
	"inmofeed/internal/contact"
	"inmofeed/internal/models"
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

// Server wires the HTTP routes to the aggregation services.
type Server struct {
	agg   *aggregate.Aggregator
	posts *blog.Service
	relay *contact.Relay
	log   *zap.SugaredLogger

	allowedOrigins []string
}

type Options struct {
	Aggregator *aggregate.Aggregator
	Posts      *blog.Service
	Relay      *contact.Relay
	Log        *zap.SugaredLogger

	// AllowedOrigins is the CORS allow-list; empty falls back to "*".
	AllowedOrigins []string
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		agg:            opts.Aggregator,
		posts:          opts.Posts,
		relay:          opts.Relay,
		log:            log,
		allowedOrigins: origins,
	}
}

// Echo builds the configured router. Exposed separately from Start so tests
// can drive it with httptest.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.allowedOrigins,
	}))

	e.GET("/healthz", s.health)
	e.GET("/api/properties", s.listProperties)
	e.GET("/api/properties/sources/:source/:id", s.getProperty)
	e.GET("/api/posts", s.listPosts)
	e.POST("/api/contact", s.submitContact)

	return e
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	e := s.Echo()
	srv := &http.Server{
		Addr:         addr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.log.Infow("http server listening", "addr", addr)
	return e.StartServer(srv)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listProperties(c echo.Context) error {
	page := intParam(c.QueryParam("page"), 1)
	limit := intParam(c.QueryParam("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	result, err := s.agg.GetProperties(c.Request().Context(), page, limit)
	if err != nil {
		// The aggregator absorbs upstream failure; an error here is internal.
		s.log.Errorw("aggregation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "aggregation failed"})
	}

	return c.JSON(http.StatusOK, models.PropertyList{
		Total:       result.Total,
		MongoDB:     result.Counts[models.SourceMongoDB],
		WooCommerce: result.Counts[models.SourceWooCommerce],
		Truncated:   result.Truncated,
		Properties:  result.Properties,
		Errors:      result.Errors,
	})
}

func (s *Server) getProperty(c echo.Context) error {
	src := models.SourceID(c.Param("source"))
	if !src.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "source must be mongodb or woocommerce",
		})
	}
	id := c.Param("id")

	ctx := c.Request().Context()
	p, found := s.agg.GetProperty(ctx, id, src)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":       "property not found",
			"suggestions": s.agg.Suggestions(ctx, 3),
		})
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) listPosts(c echo.Context) error {
	limit := intParam(c.QueryParam("limit"), 6)
	return c.JSON(http.StatusOK, s.posts.LatestPosts(c.Request().Context(), limit))
}

// submitContact always reports the message as accepted. Delivery outcome is
// observable only through the relay's logs.
func (s *Server) submitContact(c echo.Context) error {
	var msg models.ContactMessage
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg.Email == "" || msg.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and message are required"})
	}

	s.relay.Send(c.Request().Context(), msg)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
