package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"inmofeed/config"
	"inmofeed/internal/aggregate"
	"inmofeed/internal/blog"
	"inmofeed/internal/cache"
	"inmofeed/internal/contact"
	"inmofeed/internal/httputil"
	"inmofeed/internal/normalize"
	"inmofeed/internal/overrides"
	"inmofeed/internal/source"
	"inmofeed/internal/source/mongoapi"
	"inmofeed/internal/source/mongodirect"
	"inmofeed/internal/source/woocommerce"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "inmofeed",
	Short: "inmofeed - property listing aggregation service",
	Long:  "Aggregates real-estate listings from a MongoDB-backed API and a WooCommerce catalog into one canonical feed, served over HTTP, MCP, and the CLI.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("mongo-mode", "", "MongoDB source mode: api or direct")
	rootCmd.PersistentFlags().String("overrides", "", "Path to the per-listing overrides JSON file")
}

func initConfig() {
	cfg = config.Default()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("mongo-mode"); v != "" {
		cfg.MongoMode = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("overrides"); v != "" {
		cfg.OverridesFile = v
	}
}

// services bundles everything a command needs.
type services struct {
	agg   *aggregate.Aggregator
	posts *blog.Service
	relay *contact.Relay
	log   *zap.SugaredLogger
}

// buildServices validates config and wires the full aggregation stack.
func buildServices() (*services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Sugar()

	client := httputil.NewClient(cfg.Timeout)

	var store cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err := redisCache.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		store = redisCache
	} else {
		store = cache.NewMemory(nil)
	}

	ov := overrides.Empty()
	if cfg.OverridesFile != "" {
		if ov, err = overrides.Load(cfg.OverridesFile); err != nil {
			return nil, err
		}
		log.Infow("overrides loaded", "file", cfg.OverridesFile, "count", ov.Len())
	}
	norm := normalize.New(ov, log)

	wc, err := woocommerce.New(woocommerce.Options{
		BaseURL:        cfg.WCAPIURL,
		ConsumerKey:    cfg.WCConsumerKey,
		ConsumerSecret: cfg.WCConsumerSecret,
		Client:         client,
		Limiter:        rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		MaxRetries:     cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	var mongoSrc source.Source
	if cfg.MongoMode == "direct" {
		mongoSrc, err = mongodirect.Connect(context.Background(), mongodirect.Options{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	} else {
		mongoSrc, err = mongoapi.New(mongoapi.Options{
			BaseURL:    cfg.MongoAPIURL,
			Client:     client,
			MaxRetries: cfg.MaxRetries,
		})
	}
	if err != nil {
		return nil, err
	}

	agg := aggregate.New(aggregate.Options{
		Sources:  []source.Source{mongoSrc, wc},
		Norm:     norm,
		Cache:    store,
		ListTTL:  cfg.ListTTL,
		KVTTL:    cfg.KVTTL,
		PageSize: cfg.SourcePageSize,
		Log:      log,
	})

	posts := blog.New(blog.Options{
		BaseURL: cfg.WPAPIURL,
		Client:  client,
		Cache:   store,
		TTL:     cfg.KVTTL,
		Log:     log,
	})

	relay := contact.New(cfg.ContactWebhooks, client, log)

	return &services{agg: agg, posts: posts, relay: relay, log: log}, nil
}
