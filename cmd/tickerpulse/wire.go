package main

import (
	"context"
	"fmt"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/internal/batch"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/infra"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/storage"
	"github.com/seenimoa/tickerpulse/pkg/logger"
)

// app holds the long-lived collaborators shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	service  *pipeline.Service
	store    *storage.Store
	redis    *infra.RedisCache
	memCache *infra.MemoryCache
}

// newApp builds providers, the result cache and the pipeline service.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	var cache infra.ResultCache
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := infra.NewRedisCache(ctx, infra.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, cfg.Cache.TTL, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		a.redis = rc
		cache = rc
	case "none":
		cache = infra.NopCache{}
	default:
		a.memCache = infra.NewMemoryCache(cfg.Cache.TTL)
		cache = a.memCache
	}

	a.service = pipeline.New(pipeline.Deps{
		Prices: datasource.NewYFinance(
			datasource.WithYahooBaseURL(cfg.Prices.BaseURL),
			datasource.WithYahooRateLimit(cfg.Prices.RateLimit),
		),
		Headlines: headlineSource(cfg),
		Posts:     postSource(cfg, log),
		Scorer:    sentiment.NewScorer(lexicon(cfg)),
		Cache:     cache,
		Logger:    log,
	}, pipeline.Options{
		DefaultDays:   cfg.Analysis.DefaultDays,
		MaxDays:       cfg.Analysis.MaxDays,
		TopN:          cfg.Analysis.TopN,
		ParallelFetch: cfg.Analysis.ParallelFetch,
	})
	return a, nil
}

// lexicon returns VADER unless the offline keyword lexicon is configured.
func lexicon(cfg *config.Config) sentiment.Lexicon {
	if cfg.Analysis.Lexicon == "keyword" {
		return sentiment.NewKeywordLexicon()
	}
	return sentiment.NewVaderLexicon()
}

// headlineSource picks NewsAPI when a key is configured and falls back to
// the keyless RSS feed otherwise.
func headlineSource(cfg *config.Config) datasource.HeadlineSource {
	if cfg.NewsAPI.APIKey == "" || cfg.RSS.Enabled {
		return datasource.NewFeedHeadlines(cfg.RSS.URLTemplate)
	}
	return datasource.NewNewsAPI(cfg.NewsAPI.APIKey, cfg.NewsAPI.BaseURL, cfg.NewsAPI.PageSize)
}

func headlineProviderName(cfg *config.Config) string {
	return headlineSource(cfg).Name()
}

// postSource returns nil without Reddit credentials, so posts stay empty.
func postSource(cfg *config.Config, log *logger.Logger) datasource.PostSource {
	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
		log.Debug("reddit credentials not set, forum posts disabled")
		return nil
	}
	return datasource.NewReddit(datasource.RedditConfig{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		Communities:  cfg.Reddit.Communities,
		Limit:        cfg.Reddit.LimitPerCommunity,
		Pause:        cfg.Reddit.Pause,
	}, log)
}

// openStore opens and migrates the database once per process.
func (a *app) openStore(ctx context.Context) (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := storage.Open(a.cfg.Storage, a.log)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	a.store = store
	return store, nil
}

// newRunner loads the universe and builds a batch runner over the open store.
func (a *app) newRunner() (*batch.Runner, error) {
	if a.store == nil {
		return nil, fmt.Errorf("storage is not open")
	}
	universe, err := batch.LoadUniverse(a.cfg.Batch.Universe)
	if err != nil {
		return nil, err
	}
	a.log.Infow("ticker universe loaded", "path", a.cfg.Batch.Universe, "tickers", len(universe), "groups", a.cfg.Batch.Groups)
	return batch.NewRunner(a.service, a.store, universe, batch.Options{
		Groups: a.cfg.Batch.Groups,
		Days:   a.cfg.Batch.Days,
		Pause:  a.cfg.Batch.Pause,
	}, a.log), nil
}

// Close releases the database and Redis connections.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warnw("close storage", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
