package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// DefaultNewsAPIBaseURL is the NewsAPI host.
const DefaultNewsAPIBaseURL = "https://newsapi.org"

// MaxNewsAPIPageSize is the largest page NewsAPI serves.
const MaxNewsAPIPageSize = 100

// NewsAPI searches headlines through the NewsAPI /v2/everything endpoint.
type NewsAPI struct {
	client   *resty.Client
	apiKey   string
	pageSize int
}

// NewNewsAPI creates a NewsAPI headline source. baseURL may be empty.
func NewNewsAPI(apiKey, baseURL string, pageSize int) *NewsAPI {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	if pageSize <= 0 || pageSize > MaxNewsAPIPageSize {
		pageSize = MaxNewsAPIPageSize
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", DefaultUserAgent)

	return &NewsAPI{client: client, apiKey: apiKey, pageSize: pageSize}
}

// Name returns the data source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// HeadlineSearchTerms builds the title filter and boolean query for a
// ticker, e.g. `"AAPL" AND ("Apple Inc." OR stock OR earnings OR shares)`.
func HeadlineSearchTerms(ticker, company string) (inTitle, query string) {
	if company == "" {
		company = ticker
	}
	return ticker, fmt.Sprintf(`"%s" AND ("%s" OR stock OR earnings OR shares)`, ticker, company)
}

// SearchHeadlines returns articles newest first. A response whose status is
// not "ok" is ErrProvider.
func (n *NewsAPI) SearchHeadlines(ctx context.Context, q HeadlineQuery) (headlines []models.RawHeadline, err error) {
	began := time.Now()
	defer func() { metrics.ObserveProvider("newsapi", StatusOf(err), began) }()

	if n.apiKey == "" {
		return nil, fmt.Errorf("newsapi: %w", ErrMissingCredentials)
	}

	inTitle, query := HeadlineSearchTerms(q.Ticker, q.Company)

	var body newsAPIResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"qInTitle": inTitle,
			"q":        query,
			"from":     utils.DateKey(q.From),
			"sortBy":   "publishedAt",
			"language": "en",
			"pageSize": fmt.Sprint(n.pageSize),
		}).
		SetHeader("X-Api-Key", n.apiKey).
		SetResult(&body).
		SetError(&body).
		Get("/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}

	if body.Status != "ok" {
		if body.Status == "" && resp.IsError() {
			return nil, &ErrHTTP{StatusCode: resp.StatusCode(), Status: resp.Status(), Body: truncate(resp.String(), 1024)}
		}
		return nil, fmt.Errorf("%w: newsapi status %q: %s %s", ErrProvider, body.Status, body.Code, body.Message)
	}

	headlines = make([]models.RawHeadline, 0, len(body.Articles))
	for _, a := range body.Articles {
		headlines = append(headlines, models.RawHeadline{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return headlines, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
