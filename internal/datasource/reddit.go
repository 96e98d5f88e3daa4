package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

const (
	DefaultRedditAuthURL = "https://www.reddit.com"
	DefaultRedditAPIURL  = "https://oauth.reddit.com"
)

// DefaultCommunities are the subreddits searched for every ticker.
var DefaultCommunities = []string{"stocks", "investing", "StockMarket"}

// RedditConfig holds credentials and search limits for the Reddit client.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Communities  []string
	Limit        int           // per community
	Pause        time.Duration // between community queries
	AuthURL      string
	APIURL       string
}

// Reddit searches subreddits through the OAuth API with an app-only token.
type Reddit struct {
	cfg  RedditConfig
	auth *resty.Client
	api  *resty.Client
	log  *logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewReddit creates a Reddit post source. Limit defaults to 50 posts per
// community. Pause is used as configured; the shipped default is one second.
func NewReddit(cfg RedditConfig, log *logger.Logger) *Reddit {
	if len(cfg.Communities) == 0 {
		cfg.Communities = DefaultCommunities
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "tickerpulse/1.0"
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultRedditAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultRedditAPIURL
	}
	if log == nil {
		log = logger.Get()
	}

	newClient := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(strings.TrimRight(base, "/")).
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Reddit{
		cfg:  cfg,
		auth: newClient(cfg.AuthURL),
		api:  newClient(cfg.APIURL),
		log:  log.Named("reddit"),
	}
}

// Name returns the data source name.
func (r *Reddit) Name() string { return "Reddit" }

type redditOAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	Error       string `json:"error"`
}

type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
}

// TimeFilter picks Reddit's search window for a day count.
func TimeFilter(days int) string {
	switch {
	case days <= 1:
		return "day"
	case days <= 7:
		return "week"
	default:
		return "month"
	}
}

// PostQuery matches either the bare ticker or its cashtag.
func PostQuery(ticker string) string {
	return fmt.Sprintf(`"%s" OR "$%s"`, ticker, ticker)
}

// SearchPosts queries every configured community in turn, newest first,
// pausing between communities. A community that fails is logged and
// skipped; an error is returned only when all of them fail.
func (r *Reddit) SearchPosts(ctx context.Context, ticker string, days int) (posts []models.RawPost, err error) {
	began := time.Now()
	defer func() { metrics.ObserveProvider("reddit", StatusOf(err), began) }()

	token, err := r.token(ctx)
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, sub := range r.cfg.Communities {
		if i > 0 {
			if err := sleepCtx(ctx, r.cfg.Pause); err != nil {
				return posts, err
			}
		}

		found, err := r.searchCommunity(ctx, token, sub, ticker, days)
		if err != nil {
			r.log.Warnw("community search failed", "subreddit", sub, "ticker", ticker, "error", err)
			errs = append(errs, fmt.Errorf("r/%s: %w", sub, err))
			continue
		}
		posts = append(posts, found...)
	}

	if len(errs) == len(r.cfg.Communities) {
		return nil, errors.Join(errs...)
	}
	return posts, nil
}

func (r *Reddit) searchCommunity(ctx context.Context, token, sub, ticker string, days int) ([]models.RawPost, error) {
	var listing redditListingResponse
	resp, err := r.api.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":           PostQuery(ticker),
			"restrict_sr": "1",
			"sort":        "new",
			"t":           TimeFilter(days),
			"limit":       fmt.Sprint(r.cfg.Limit),
			"raw_json":    "1",
		}).
		SetResult(&listing).
		Get("/r/" + sub + "/search")
	if err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}
	if resp.IsError() {
		return nil, &ErrHTTP{StatusCode: resp.StatusCode(), Status: resp.Status(), Body: truncate(resp.String(), 1024)}
	}

	children := listing.Data.Children
	if len(children) > r.cfg.Limit {
		children = children[:r.cfg.Limit]
	}

	posts := make([]models.RawPost, 0, len(children))
	for _, c := range children {
		d := c.Data
		link := d.URL
		if link == "" && d.Permalink != "" {
			link = "https://www.reddit.com" + d.Permalink
		}
		posts = append(posts, models.RawPost{
			Title:      d.Title,
			SelfText:   d.Selftext,
			Score:      d.Score,
			CreatedUTC: d.CreatedUTC,
			URL:        link,
			Subreddit:  sub,
		})
	}
	return posts, nil
}

// token returns a cached app-only access token, refreshing it a minute
// before expiry.
func (r *Reddit) token(ctx context.Context) (string, error) {
	if r.cfg.ClientID == "" || r.cfg.ClientSecret == "" {
		return "", fmt.Errorf("reddit: %w", ErrMissingCredentials)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return r.accessToken, nil
	}

	var oauth redditOAuthResponse
	resp, err := r.auth.R().
		SetContext(ctx).
		SetBasicAuth(r.cfg.ClientID, r.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&oauth).
		Post("/api/v1/access_token")
	if err != nil {
		return "", fmt.Errorf("reddit oauth: %w", err)
	}
	if resp.IsError() {
		return "", &ErrHTTP{StatusCode: resp.StatusCode(), Status: resp.Status(), Body: truncate(resp.String(), 1024)}
	}
	if oauth.AccessToken == "" {
		return "", fmt.Errorf("%w: reddit oauth: %s", ErrProvider, coalesce(oauth.Error, "empty access token"))
	}

	r.accessToken = oauth.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(oauth.ExpiresIn)*time.Second - time.Minute)
	r.log.Debugw("reddit token refreshed", "expires_in", oauth.ExpiresIn)
	return r.accessToken, nil
}
