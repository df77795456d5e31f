package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Upstream locations and
// credentials are mandatory: there are deliberately no embedded fallback
// endpoints.
type Config struct {
	// MongoDB source. Mode "api" talks to the REST proxy at MongoAPIURL;
	// mode "direct" connects to MongoURI with the driver.
	MongoMode       string
	MongoAPIURL     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// WooCommerce source.
	WCAPIURL         string
	WCConsumerKey    string
	WCConsumerSecret string

	// WordPress blog root (optional; blog endpoints serve samples without it).
	WPAPIURL string

	// Outbound HTTP behavior.
	Timeout       time.Duration
	MaxRetries    int
	RatePerSecond float64
	RateBurst     int

	// Caching.
	ListTTL       time.Duration
	KVTTL         time.Duration
	RedisAddr     string
	RedisPassword string

	// Aggregation.
	SourcePageSize int
	OverridesFile  string

	// HTTP server.
	HTTPPort       string
	AllowedOrigins []string

	// Contact relay.
	ContactWebhooks []string

	// MCP HTTP bearer token (empty disables auth).
	APIKey string
}

// Default returns configuration with sensible defaults for everything that
// has one. Upstream URLs and credentials have no defaults on purpose.
func Default() *Config {
	return &Config{
		MongoMode:       "api",
		MongoDatabase:   "listings",
		MongoCollection: "properties",
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		RatePerSecond:   5.0,
		RateBurst:       5,
		ListTTL:         5 * time.Minute,
		KVTTL:           30 * time.Minute,
		SourcePageSize:  100,
		HTTPPort:        "8080",
		AllowedOrigins:  []string{"*"},
	}
}

// LoadFromEnv loads .env (if present) then overrides config from environment
// variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("INMOFEED_MONGO_MODE"); v != "" {
		c.MongoMode = v
	}
	if v := os.Getenv("MONGODB_API_URL"); v != "" {
		c.MongoAPIURL = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.MongoDatabase = v
	}
	if v := os.Getenv("MONGODB_COLLECTION"); v != "" {
		c.MongoCollection = v
	}
	if v := os.Getenv("WC_API_URL"); v != "" {
		c.WCAPIURL = v
	}
	if v := os.Getenv("WC_CONSUMER_KEY"); v != "" {
		c.WCConsumerKey = v
	}
	if v := os.Getenv("WC_CONSUMER_SECRET"); v != "" {
		c.WCConsumerSecret = v
	}
	if v := os.Getenv("WP_API_URL"); v != "" {
		c.WPAPIURL = v
	}
	if v := os.Getenv("INMOFEED_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("INMOFEED_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("INMOFEED_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("INMOFEED_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("INMOFEED_LIST_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.ListTTL = d
		}
	}
	if v := os.Getenv("INMOFEED_KV_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.KVTTL = d
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("INMOFEED_SOURCE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SourcePageSize = n
		}
	}
	if v := os.Getenv("INMOFEED_OVERRIDES_FILE"); v != "" {
		c.OverridesFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("INMOFEED_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CONTACT_WEBHOOK_URLS"); v != "" {
		c.ContactWebhooks = splitList(v)
	}
	if v := os.Getenv("INMOFEED_API_KEY"); v != "" {
		c.APIKey = v
	}
}

// Validate checks that the mandatory upstream configuration is present.
func (c *Config) Validate() error {
	switch c.MongoMode {
	case "api":
		if c.MongoAPIURL == "" {
			return fmt.Errorf("MONGODB_API_URL is required in api mode")
		}
	case "direct":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required in direct mode")
		}
	default:
		return fmt.Errorf("INMOFEED_MONGO_MODE must be api or direct, got %q", c.MongoMode)
	}
	if c.WCAPIURL == "" {
		return fmt.Errorf("WC_API_URL is required")
	}
	if c.WCConsumerKey == "" || c.WCConsumerSecret == "" {
		return fmt.Errorf("WC_CONSUMER_KEY and WC_CONSUMER_SECRET are required")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
