package api

import (
	"net/http"

	"github.com/seenimoa/tickerpulse/internal/config"
)

// ConfigView is the running configuration with credentials left out.
type ConfigView struct {
	Analysis config.AnalysisConfig `json:"analysis"`
	Cache    CacheView             `json:"cache"`
	Storage  StorageView           `json:"storage"`
	Batch    config.BatchConfig    `json:"batch"`
	Reddit   RedditView            `json:"reddit"`
	Headline HeadlineView          `json:"headlines"`
	Logging  config.LoggingConfig  `json:"logging"`
}

// CacheView omits the Redis password.
type CacheView struct {
	Backend   string `json:"backend"`
	TTL       string `json:"ttl"`
	RedisAddr string `json:"redis_addr,omitempty"`
}

// StorageView omits the DSN, which may carry a password.
type StorageView struct {
	Driver string `json:"driver"`
}

// RedditView omits the app credentials.
type RedditView struct {
	Communities       []string `json:"communities"`
	LimitPerCommunity int      `json:"limit_per_community"`
	Pause             string   `json:"pause"`
}

// HeadlineView describes which headline source is in use.
type HeadlineView struct {
	Provider string `json:"provider"`
	PageSize int    `json:"page_size"`
}

func newConfigView(cfg *config.Config) ConfigView {
	provider := "rss"
	if cfg.NewsAPI.APIKey != "" && !cfg.RSS.Enabled {
		provider = "newsapi"
	}
	view := ConfigView{
		Analysis: cfg.Analysis,
		Cache: CacheView{
			Backend: cfg.Cache.Backend,
			TTL:     cfg.Cache.TTL.String(),
		},
		Storage: StorageView{Driver: cfg.Storage.Driver},
		Batch:   cfg.Batch,
		Reddit: RedditView{
			Communities:       cfg.Reddit.Communities,
			LimitPerCommunity: cfg.Reddit.LimitPerCommunity,
			Pause:             cfg.Reddit.Pause.String(),
		},
		Headline: HeadlineView{Provider: provider, PageSize: cfg.NewsAPI.PageSize},
		Logging:  cfg.Logging,
	}
	if cfg.Cache.Backend == "redis" {
		view.Cache.RedisAddr = cfg.Cache.RedisAddr
	}
	return view
}

// handleGetConfig returns the running configuration without secrets.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newConfigView(s.cfg),
	})
}

// handleGetConfigKeys returns the status of all credentials, masked.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
