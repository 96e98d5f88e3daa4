// Package pipeline runs one sentiment-price analysis end to end: prices,
// headlines and posts are fetched, scored, bucketed by day, joined and
// correlated, and the finished report is cached per (ticker, days).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerpulse/internal/analysis/correlation"
	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/internal/analysis/timeline"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/infra"
	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// ErrInvalidTicker is returned for an empty or malformed ticker symbol.
var ErrInvalidTicker = errors.New("invalid ticker")

// NotFoundMessage is what users see when a ticker has no price data.
const NotFoundMessage = "Invalid ticker or no data found."

// Default window bounds.
const (
	DefaultDays = 30
	MaxDays     = 365
)

// Options tunes a Service. Zero values fall back to the defaults above.
type Options struct {
	DefaultDays   int
	MaxDays       int
	TopN          int
	ParallelFetch bool
	Now           func() time.Time
}

// Deps are the collaborators a Service is built from. Headlines and Posts
// may be nil, in which case those lists are always empty.
type Deps struct {
	Prices    datasource.PriceSource
	Headlines datasource.HeadlineSource
	Posts     datasource.PostSource
	Scorer    *sentiment.Scorer
	Cache     infra.ResultCache
	Logger    *logger.Logger
}

// Service runs analyses.
type Service struct {
	prices    datasource.PriceSource
	headlines datasource.HeadlineSource
	posts     datasource.PostSource
	scorer    *sentiment.Scorer
	cache     infra.ResultCache
	log       *logger.Logger
	opts      Options

	inflight infra.KeyedMutex
}

// New creates a Service.
func New(deps Deps, opts Options) *Service {
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = DefaultDays
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = MaxDays
	}
	if opts.TopN <= 0 {
		opts.TopN = timeline.DefaultTopN
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Scorer == nil {
		deps.Scorer = sentiment.NewScorer(nil)
	}
	if deps.Cache == nil {
		deps.Cache = infra.NopCache{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}

	return &Service{
		prices:    deps.Prices,
		headlines: deps.Headlines,
		posts:     deps.Posts,
		scorer:    deps.Scorer,
		cache:     deps.Cache,
		log:       deps.Logger.Named("pipeline"),
		opts:      opts,
	}
}

// DefaultDays returns the window used when a caller does not pick one.
func (s *Service) DefaultDays() int { return s.opts.DefaultDays }

// Analyze returns the report for ticker over the last days calendar days,
// serving it from the cache when a fresh copy exists. An unknown ticker is
// datasource.ErrTickerNotFound and no text provider is called.
func (s *Service) Analyze(ctx context.Context, ticker string, days int) (*models.SentimentReport, error) {
	return s.analyze(ctx, ticker, days, false)
}

// Refresh is Analyze without the cache read. The fresh report still
// replaces whatever was cached.
func (s *Service) Refresh(ctx context.Context, ticker string, days int) (*models.SentimentReport, error) {
	return s.analyze(ctx, ticker, days, true)
}

// Normalize validates a ticker and clamps days into 1..MaxDays.
func (s *Service) Normalize(ticker string, days int) (string, int, error) {
	t := utils.NormalizeTicker(ticker)
	if t == "" || !utils.ValidTicker(t) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	switch {
	case days < 1:
		days = 1
	case days > s.opts.MaxDays:
		days = s.opts.MaxDays
	}
	return t, days, nil
}

func (s *Service) analyze(ctx context.Context, rawTicker string, rawDays int, bypass bool) (report *models.SentimentReport, err error) {
	ticker, days, err := s.Normalize(rawTicker, rawDays)
	if err != nil {
		metrics.Analyses.WithLabelValues("invalid").Inc()
		return nil, err
	}

	key := infra.CacheKey(ticker, days)
	if !bypass {
		if cached, ok := s.lookup(ctx, key, false); ok {
			return cached, nil
		}
	}

	// Concurrent requests for the same key wait for the first one and then
	// read its result from the cache.
	unlock := s.inflight.Lock(key)
	defer unlock()
	if !bypass {
		if cached, ok := s.lookup(ctx, key, true); ok {
			return cached, nil
		}
	}

	began := time.Now()
	defer func() {
		metrics.Analyses.WithLabelValues(outcome(err)).Inc()
		if err == nil {
			metrics.AnalysisDuration.Observe(time.Since(began).Seconds())
		}
	}()

	report, err = s.run(ctx, ticker, days)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, report)
	return report, nil
}

// lookup reads the result cache and counts the outcome. A miss is counted
// only on the final check, so every request records exactly one outcome.
func (s *Service) lookup(ctx context.Context, key string, final bool) (*models.SentimentReport, bool) {
	cached, ok := s.cache.Get(ctx, key)
	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		s.log.Debugw("cache hit", "key", key)
		return cached, true
	}
	if final {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return nil, false
}

func (s *Service) run(ctx context.Context, ticker string, days int) (*models.SentimentReport, error) {
	now := s.opts.Now().UTC()
	today := utils.DateOf(now)
	log := s.log.With("ticker", ticker, "days", days)

	prices, company, err := s.prices.GetDailyClose(ctx, ticker, utils.DaysAgo(today, days), today)
	if err != nil {
		if errors.Is(err, datasource.ErrTickerNotFound) {
			log.Infow("no price data", "error", err)
			return nil, err
		}
		return nil, fmt.Errorf("fetch prices for %s: %w", ticker, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	if company.Ticker == "" {
		company.Ticker = ticker
	}

	query := datasource.HeadlineQuery{
		Ticker:  ticker,
		Company: company.Name,
		From:    utils.DaysAgo(today, timeline.HeadlineWindow(days)),
	}
	rawHeadlines, rawPosts := s.fetchText(ctx, log, query, days)

	headlines := timeline.NormalizeHeadlines(s.scorer, rawHeadlines)
	posts := timeline.NormalizePosts(s.scorer, rawPosts, days, now)

	events := make([]models.TextEvent, 0, len(headlines)+len(posts))
	events = append(events, headlines...)
	events = append(events, posts...)

	daily := timeline.AggregateDaily(events, days)
	combined := timeline.Join(prices, daily)
	corr := correlation.NextDay(combined)

	log.Infow("analysis complete",
		"prices", len(prices),
		"headlines", len(headlines),
		"posts", len(posts),
		"daily", len(daily),
		"correlation_rows", corr.Rows,
	)

	report := &models.SentimentReport{
		Ticker:       ticker,
		Company:      company,
		Days:         days,
		Prices:       prices,
		Headlines:    headlines,
		Posts:        posts,
		Daily:        daily,
		Combined:     combined,
		Correlation:  corr,
		TopHeadlines: timeline.TopN(headlines, s.opts.TopN),
		TopPosts:     timeline.TopN(posts, s.opts.TopN),
		GeneratedAt:  now,
	}
	if s.headlines != nil {
		report.HeadlineSource = s.headlines.Name()
	}
	return report, nil
}

// fetchText gets headlines and posts. Provider failures are logged and
// become empty lists.
func (s *Service) fetchText(ctx context.Context, log *logger.Logger, q datasource.HeadlineQuery, days int) ([]models.RawHeadline, []models.RawPost) {
	var (
		headlines []models.RawHeadline
		posts     []models.RawPost
	)

	getHeadlines := func(ctx context.Context) {
		if s.headlines == nil {
			return
		}
		h, err := s.headlines.SearchHeadlines(ctx, q)
		if err != nil {
			log.Warnw("headline fetch failed, continuing without headlines", "source", s.headlines.Name(), "error", err)
			return
		}
		headlines = h
	}
	getPosts := func(ctx context.Context) {
		if s.posts == nil {
			return
		}
		p, err := s.posts.SearchPosts(ctx, q.Ticker, days)
		if err != nil {
			log.Warnw("post fetch failed, continuing without posts", "source", s.posts.Name(), "error", err)
			return
		}
		posts = p
	}

	if !s.opts.ParallelFetch {
		getHeadlines(ctx)
		getPosts(ctx)
		return headlines, posts
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { getHeadlines(gctx); return nil })
	g.Go(func() error { getPosts(gctx); return nil })
	_ = g.Wait()
	return headlines, posts
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, datasource.ErrTickerNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTicker):
		return "invalid"
	default:
		return "error"
	}
}
