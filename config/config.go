package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Price sources
const (
	PriceSourceSQLite = "sqlite"
	PriceSourceFeed   = "feed"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Prices    PricesConfig    `mapstructure:"prices"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MatchingConfig tunes size matching and store-switch repricing
type MatchingConfig struct {
	AutoMatchTolerance float64 `mapstructure:"auto_match_tolerance"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
	LookupConcurrency  int     `mapstructure:"lookup_concurrency"`
}

// PricesConfig selects where store prices come from
type PricesConfig struct {
	Source                string        `mapstructure:"source"` // "sqlite" or "feed"
	FeedBaseURL           string        `mapstructure:"feed_base_url"`
	FeedAPIKey            string        `mapstructure:"feed_api_key"`
	FeedRequestsPerSecond float64       `mapstructure:"feed_requests_per_second"`
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
}

// StoreConfig locates the SQLite database
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/trolley/")

	// TROLLEY_PRICES_SOURCE -> prices.source
	v.SetEnvPrefix("TROLLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	v.SetDefault("matching.auto_match_tolerance", 0.20)
	v.SetDefault("matching.enable_debug_logging", false)
	v.SetDefault("matching.lookup_concurrency", 8)

	v.SetDefault("prices.source", PriceSourceSQLite)
	v.SetDefault("prices.feed_base_url", "")
	v.SetDefault("prices.feed_api_key", "")
	v.SetDefault("prices.feed_requests_per_second", 5)
	v.SetDefault("prices.cache_ttl", "15m")

	v.SetDefault("store.path", "trolley.db")

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	tol := config.Matching.AutoMatchTolerance
	if tol <= 0 || tol > 1 {
		return fmt.Errorf("matching.auto_match_tolerance must be in (0, 1], got: %v", tol)
	}

	switch config.Prices.Source {
	case PriceSourceSQLite:
	case PriceSourceFeed:
		if config.Prices.FeedBaseURL == "" {
			return fmt.Errorf("prices.feed_base_url is required when source is 'feed' (set TROLLEY_PRICES_FEED_BASE_URL)")
		}
	default:
		return fmt.Errorf("prices.source must be 'sqlite' or 'feed', got: %s", config.Prices.Source)
	}

	if config.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if _, err := parseLevel(config.Log.Level); err != nil {
		return err
	}

	return nil
}
