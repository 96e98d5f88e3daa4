// Package config handles configuration loading for tickerpulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	NewsAPI  NewsAPIConfig  `mapstructure:"newsapi"  yaml:"newsapi"`
	Reddit   RedditConfig   `mapstructure:"reddit"   yaml:"reddit"`
	Prices   PricesConfig   `mapstructure:"prices"   yaml:"prices"`
	RSS      RSSConfig      `mapstructure:"rss"      yaml:"rss"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Batch    BatchConfig    `mapstructure:"batch"    yaml:"batch"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// NewsAPIConfig holds the headline search API settings.
type NewsAPIConfig struct {
	APIKey          string `mapstructure:"api_key"           yaml:"api_key"`
	BaseURL         string `mapstructure:"base_url"          yaml:"base_url"`
	PageSize        int    `mapstructure:"page_size"         yaml:"page_size"`
	MaxLookbackDays int    `mapstructure:"max_lookback_days" yaml:"max_lookback_days"`
}

// RedditConfig holds Reddit app credentials and search limits.
type RedditConfig struct {
	ClientID          string        `mapstructure:"client_id"           yaml:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"       yaml:"client_secret"`
	UserAgent         string        `mapstructure:"user_agent"          yaml:"user_agent"`
	Communities       []string      `mapstructure:"communities"         yaml:"communities"`
	LimitPerCommunity int           `mapstructure:"limit_per_community" yaml:"limit_per_community"`
	Pause             time.Duration `mapstructure:"pause"               yaml:"pause"`
}

// PricesConfig holds market-data settings.
type PricesConfig struct {
	BaseURL   string  `mapstructure:"base_url"   yaml:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second
}

// RSSConfig controls the keyless headline feed.
type RSSConfig struct {
	Enabled     bool   `mapstructure:"enabled"      yaml:"enabled"` // prefer RSS even when a NewsAPI key is set
	URLTemplate string `mapstructure:"url_template" yaml:"url_template"`
}

// AnalysisConfig holds pipeline settings.
type AnalysisConfig struct {
	DefaultDays    int           `mapstructure:"default_days"    yaml:"default_days"`
	MaxDays        int           `mapstructure:"max_days"        yaml:"max_days"`
	TopN           int           `mapstructure:"top_n"           yaml:"top_n"`
	ParallelFetch  bool          `mapstructure:"parallel_fetch"  yaml:"parallel_fetch"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Lexicon        string        `mapstructure:"lexicon"         yaml:"lexicon"` // "vader" or "keyword"
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"        yaml:"backend"` // "memory", "redis" or "none"
	TTL           time.Duration `mapstructure:"ttl"            yaml:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"     yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"       yaml:"redis_db"`
}

// StorageConfig selects the database.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "sqlite" or "mysql"
	DSN    string `mapstructure:"dsn"    yaml:"dsn"`
}

// BatchConfig holds the rotating scrape settings.
type BatchConfig struct {
	Universe string        `mapstructure:"universe" yaml:"universe"` // CSV with a Symbol column
	Groups   int           `mapstructure:"groups"   yaml:"groups"`
	Days     int           `mapstructure:"days"     yaml:"days"`
	Pause    time.Duration `mapstructure:"pause"    yaml:"pause"`
	Schedule string        `mapstructure:"schedule" yaml:"schedule"` // cron expression
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host         string        `mapstructure:"host"          yaml:"host"`
	Port         int           `mapstructure:"port"          yaml:"port"`
	CORSOrigins  []string      `mapstructure:"cors_origins"  yaml:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerpulse/config.yaml (home directory)
//  3. /etc/tickerpulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: TICKERPULSE_<SECTION>_<KEY>, e.g., TICKERPULSE_CACHE_TTL
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerpulse"))
	v.AddConfigPath("/etc/tickerpulse")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TICKERPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Headline defaults
	v.SetDefault("newsapi.api_key", "")
	v.SetDefault("newsapi.base_url", "https://newsapi.org")
	v.SetDefault("newsapi.page_size", 100)
	v.SetDefault("newsapi.max_lookback_days", 30)

	// Reddit defaults
	v.SetDefault("reddit.client_id", "")
	v.SetDefault("reddit.client_secret", "")
	v.SetDefault("reddit.user_agent", "tickerpulse/1.0")
	v.SetDefault("reddit.communities", []string{"stocks", "investing", "StockMarket"})
	v.SetDefault("reddit.limit_per_community", 50)
	v.SetDefault("reddit.pause", time.Second)

	// Price defaults
	v.SetDefault("prices.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("prices.rate_limit", 5.0)

	v.SetDefault("rss.enabled", false)
	v.SetDefault("rss.url_template", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")

	// Analysis defaults
	v.SetDefault("analysis.default_days", 30)
	v.SetDefault("analysis.max_days", 365)
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("analysis.parallel_fetch", false)
	v.SetDefault("analysis.request_timeout", 90*time.Second)
	v.SetDefault("analysis.lexicon", "vader")

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Storage defaults
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "stock_sentiment.db")

	// Batch defaults
	v.SetDefault("batch.universe", "data/SP500.csv")
	v.SetDefault("batch.groups", 5)
	v.SetDefault("batch.days", 5)
	v.SetDefault("batch.pause", time.Second)
	v.SetDefault("batch.schedule", "0 6 * * *")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 120*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv reads the conventional un-prefixed credential variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEWSAPI_KEY"); key != "" {
		cfg.NewsAPI.APIKey = key
	}
	if id := os.Getenv("REDDIT_CLIENT_ID"); id != "" {
		cfg.Reddit.ClientID = id
	}
	if secret := os.Getenv("REDDIT_CLIENT_SECRET"); secret != "" {
		cfg.Reddit.ClientSecret = secret
	}
	if ua := os.Getenv("REDDIT_USER_AGENT"); ua != "" {
		cfg.Reddit.UserAgent = ua
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Analysis.MaxDays < 1:
		return fmt.Errorf("analysis.max_days must be >= 1, got %d", c.Analysis.MaxDays)
	case c.Analysis.DefaultDays < 1 || c.Analysis.DefaultDays > c.Analysis.MaxDays:
		return fmt.Errorf("analysis.default_days must be within 1..%d, got %d", c.Analysis.MaxDays, c.Analysis.DefaultDays)
	case c.Analysis.TopN < 1:
		return fmt.Errorf("analysis.top_n must be >= 1, got %d", c.Analysis.TopN)
	case c.Batch.Groups < 1:
		return fmt.Errorf("batch.groups must be >= 1, got %d", c.Batch.Groups)
	}
	switch c.Analysis.Lexicon {
	case "vader", "keyword":
	default:
		return fmt.Errorf("analysis.lexicon must be vader or keyword, got %q", c.Analysis.Lexicon)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend)
	}
	switch c.Storage.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("storage.driver must be sqlite or mysql, got %q", c.Storage.Driver)
	}
	return nil
}

// Addr returns the host:port the API server listens on.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
