package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var credentialEnv = []string{
	"NEWSAPI_KEY", "REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USER_AGENT",
	"TICKERPULSE_NEWSAPI_API_KEY", "TICKERPULSE_REDDIT_CLIENT_ID", "TICKERPULSE_REDDIT_CLIENT_SECRET",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range credentialEnv {
		t.Setenv(e, "")
		os.Unsetenv(e)
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.NewsAPI.PageSize != 100 {
		t.Errorf("NewsAPI.PageSize: got %d, want 100", cfg.NewsAPI.PageSize)
	}
	if cfg.NewsAPI.MaxLookbackDays != 30 {
		t.Errorf("NewsAPI.MaxLookbackDays: got %d, want 30", cfg.NewsAPI.MaxLookbackDays)
	}
	if got := cfg.Reddit.Communities; len(got) != 3 || got[0] != "stocks" || got[1] != "investing" || got[2] != "StockMarket" {
		t.Errorf("Reddit.Communities: got %v", got)
	}
	if cfg.Reddit.LimitPerCommunity != 50 {
		t.Errorf("Reddit.LimitPerCommunity: got %d, want 50", cfg.Reddit.LimitPerCommunity)
	}
	if cfg.Reddit.Pause != time.Second {
		t.Errorf("Reddit.Pause: got %v, want 1s", cfg.Reddit.Pause)
	}
	if cfg.Analysis.DefaultDays != 30 || cfg.Analysis.MaxDays != 365 {
		t.Errorf("Analysis days: got %d/%d, want 30/365", cfg.Analysis.DefaultDays, cfg.Analysis.MaxDays)
	}
	if cfg.Analysis.TopN != 10 {
		t.Errorf("Analysis.TopN: got %d, want 10", cfg.Analysis.TopN)
	}
	if cfg.Analysis.ParallelFetch {
		t.Error("Analysis.ParallelFetch should be false by default")
	}
	if cfg.Analysis.Lexicon != "vader" {
		t.Errorf("Analysis.Lexicon: got %q, want vader", cfg.Analysis.Lexicon)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache: got %q/%v, want memory/1h", cfg.Cache.Backend, cfg.Cache.TTL)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "stock_sentiment.db" {
		t.Errorf("Storage: got %q/%q", cfg.Storage.Driver, cfg.Storage.DSN)
	}
	if cfg.Batch.Groups != 5 || cfg.Batch.Days != 5 || cfg.Batch.Pause != time.Second {
		t.Errorf("Batch: got groups=%d days=%d pause=%v", cfg.Batch.Groups, cfg.Batch.Days, cfg.Batch.Pause)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr(): got %q", cfg.API.Addr())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
newsapi:
  api_key: file-news-key-123
analysis:
  top_n: 20
  parallel_fetch: true
cache:
  ttl: 10m
reddit:
  communities: [wallstreetbets]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.NewsAPI.APIKey != "file-news-key-123" {
		t.Errorf("NewsAPI.APIKey: got %q", cfg.NewsAPI.APIKey)
	}
	if cfg.Analysis.TopN != 20 || !cfg.Analysis.ParallelFetch {
		t.Errorf("Analysis: got top_n=%d parallel=%v", cfg.Analysis.TopN, cfg.Analysis.ParallelFetch)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL: got %v, want 10m", cfg.Cache.TTL)
	}
	if len(cfg.Reddit.Communities) != 1 || cfg.Reddit.Communities[0] != "wallstreetbets" {
		t.Errorf("Reddit.Communities: got %v", cfg.Reddit.Communities)
	}
	if cfg.Analysis.DefaultDays != 30 {
		t.Errorf("unset keys keep defaults, got default_days=%d", cfg.Analysis.DefaultDays)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("NEWSAPI_KEY", "env-news-key-456")
	t.Setenv("REDDIT_CLIENT_ID", "reddit-id")
	t.Setenv("TICKERPULSE_ANALYSIS_TOP_N", "20")
	t.Setenv("TICKERPULSE_CACHE_BACKEND", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.NewsAPI.APIKey != "env-news-key-456" {
		t.Errorf("NewsAPI.APIKey: got %q", cfg.NewsAPI.APIKey)
	}
	if cfg.Reddit.ClientID != "reddit-id" {
		t.Errorf("Reddit.ClientID: got %q", cfg.Reddit.ClientID)
	}
	if cfg.Analysis.TopN != 20 {
		t.Errorf("Analysis.TopN: got %d, want 20", cfg.Analysis.TopN)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("Cache.Backend: got %q", cfg.Cache.Backend)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	base, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max days", func(c *Config) { c.Analysis.MaxDays = 0 }},
		{"default days above max", func(c *Config) { c.Analysis.DefaultDays = 400 }},
		{"top n", func(c *Config) { c.Analysis.TopN = 0 }},
		{"groups", func(c *Config) { c.Batch.Groups = 0 }},
		{"lexicon", func(c *Config) { c.Analysis.Lexicon = "textblob" }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"storage driver", func(c *Config) { c.Storage.Driver = "postgres" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := base.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ── Keys ──

func TestCheckAPIKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDDIT_CLIENT_ID", "abcdefghijkl")

	cfg := &Config{}
	cfg.NewsAPI.APIKey = "newskey-0123456789"
	cfg.Reddit.ClientID = "abcdefghijkl"

	keys := CheckAPIKeys(cfg)
	if len(keys) != 3 {
		t.Fatalf("got %d keys, want 3", len(keys))
	}
	if keys[0].Source != KeySourceConfig || keys[0].Masked != "new...789" {
		t.Errorf("NewsAPI key status: %+v", keys[0])
	}
	if keys[1].Source != KeySourceEnv {
		t.Errorf("Reddit ID source: got %q, want env", keys[1].Source)
	}
	if keys[2].IsSet || keys[2].Source != KeySourceNone {
		t.Errorf("Reddit secret status: %+v", keys[2])
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "***" {
		t.Errorf("MaskKey(short) = %q", got)
	}
	if got := MaskKey("1234567890"); got != "123...890" {
		t.Errorf("MaskKey = %q", got)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
