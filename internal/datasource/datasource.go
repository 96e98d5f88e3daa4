// Package datasource fetches the raw inputs of a sentiment analysis: daily
// closes from Yahoo Finance, headlines from NewsAPI (or an RSS fallback) and
// forum posts from Reddit.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// PriceSource returns daily closes for a ticker over [start, end).
type PriceSource interface {
	Name() string
	GetDailyClose(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, models.Company, error)
}

// HeadlineSource searches recent news headlines about a company.
type HeadlineSource interface {
	Name() string
	SearchHeadlines(ctx context.Context, q HeadlineQuery) ([]models.RawHeadline, error)
}

// PostSource searches recent forum posts mentioning a ticker.
type PostSource interface {
	Name() string
	SearchPosts(ctx context.Context, ticker string, days int) ([]models.RawPost, error)
}

// HeadlineQuery describes one headline search.
type HeadlineQuery struct {
	Ticker  string
	Company string
	From    time.Time
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker is unknown or has no prices in range.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrProvider is returned when a provider answers with a failure status.
var ErrProvider = errors.New("provider error")

// ErrMissingCredentials is returned when a provider needs keys that are not configured.
var ErrMissingCredentials = errors.New("provider credentials not configured")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// StatusOf maps an error to the label used for provider metrics.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTickerNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
