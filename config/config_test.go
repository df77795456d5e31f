package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "api", cfg.MongoMode)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.ListTTL)
	assert.Equal(t, 30*time.Minute, cfg.KVTTL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)

	// Upstream locations deliberately have no defaults.
	assert.Empty(t, cfg.MongoAPIURL)
	assert.Empty(t, cfg.WCAPIURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("MONGODB_API_URL", "https://api.example.com")
		t.Setenv("WC_API_URL", "https://shop.example.com/wp-json/wc/v3")
		t.Setenv("WC_CONSUMER_KEY", "ck_live")
		t.Setenv("WC_CONSUMER_SECRET", "cs_live")
		t.Setenv("INMOFEED_TIMEOUT_MS", "2500")
		t.Setenv("INMOFEED_LIST_TTL", "90s")
		t.Setenv("PORT", "9090")
		t.Setenv("INMOFEED_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
		t.Setenv("CONTACT_WEBHOOK_URLS", "https://hooks.example.com/x")

		cfg := Default()
		cfg.LoadFromEnv()

		assert.Equal(t, "https://api.example.com", cfg.MongoAPIURL)
		assert.Equal(t, "ck_live", cfg.WCConsumerKey)
		assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
		assert.Equal(t, 90*time.Second, cfg.ListTTL)
		assert.Equal(t, "9090", cfg.HTTPPort)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
		assert.Equal(t, []string{"https://hooks.example.com/x"}, cfg.ContactWebhooks)
	})

	t.Run("invalid numeric values are ignored", func(t *testing.T) {
		t.Setenv("INMOFEED_TIMEOUT_MS", "soon")
		t.Setenv("INMOFEED_MAX_RETRIES", "-2")

		cfg := Default()
		cfg.LoadFromEnv()

		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, 3, cfg.MaxRetries)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.MongoAPIURL = "https://api.example.com"
		cfg.WCAPIURL = "https://shop.example.com/wp-json/wc/v3"
		cfg.WCConsumerKey = "ck"
		cfg.WCConsumerSecret = "cs"
		return cfg
	}

	t.Run("complete api-mode config passes", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("api mode requires the proxy URL", func(t *testing.T) {
		cfg := valid()
		cfg.MongoAPIURL = ""
		assert.ErrorContains(t, cfg.Validate(), "MONGODB_API_URL")
	})

	t.Run("direct mode requires the connection URI", func(t *testing.T) {
		cfg := valid()
		cfg.MongoMode = "direct"
		assert.ErrorContains(t, cfg.Validate(), "MONGODB_URI")

		cfg.MongoURI = "mongodb://localhost:27017"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown mongo mode is rejected", func(t *testing.T) {
		cfg := valid()
		cfg.MongoMode = "carrier-pigeon"
		assert.ErrorContains(t, cfg.Validate(), "INMOFEED_MONGO_MODE")
	})

	t.Run("woocommerce credentials are mandatory", func(t *testing.T) {
		cfg := valid()
		cfg.WCConsumerSecret = ""
		assert.ErrorContains(t, cfg.Validate(), "WC_CONSUMER")
	})
}
