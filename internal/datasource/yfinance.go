package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// DefaultYahooBaseURL is the Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YFinance fetches daily closes from the Yahoo Finance v8 chart API.
type YFinance struct {
	baseURL string
	limiter *rate.Limiter
}

// YFinanceOption configures a YFinance client.
type YFinanceOption func(*YFinance)

// WithYahooBaseURL points the client at a different host (tests, proxies).
func WithYahooBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithYahooRateLimit sets the sustained request rate per second.
func WithYahooRateLimit(perSecond float64) YFinanceOption {
	return func(y *YFinance) {
		if perSecond > 0 {
			y.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewYFinance creates a new Yahoo Finance price source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL: DefaultYahooBaseURL,
		limiter: rate.NewLimiter(rate.Limit(5), 1), // 5 req/s
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol       string `json:"symbol"`
	Currency     string `json:"currency"`
	ExchangeName string `json:"exchangeName"`
	LongName     string `json:"longName"`
	ShortName    string `json:"shortName"`
	GMTOffset    int64  `json:"gmtoffset"`
}

type yfIndicators struct {
	Quote []yfQuote `json:"quote"`
}

type yfQuote struct {
	Close []*float64 `json:"close"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetDailyClose returns closes for trading days in [start, end), rounded to
// 2 decimal places. An unknown ticker or an empty range is ErrTickerNotFound.
func (y *YFinance) GetDailyClose(ctx context.Context, ticker string, start, end time.Time) (series models.PriceSeries, company models.Company, err error) {
	began := time.Now()
	defer func() { metrics.ObserveProvider("yahoo", StatusOf(err), began) }()

	symbol := utils.YahooSymbol(ticker)
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, models.Company{}, err
	}

	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		y.baseURL, symbol, start.Unix(), end.Unix(),
	)

	body, _, err := doGet(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		var httpErr *ErrHTTP
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, models.Company{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, models.Company{}, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, models.Company{}, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, models.Company{}, fmt.Errorf("parse yfinance chart: %w", err)
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, models.Company{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, models.Company{}, fmt.Errorf("%w: yfinance chart: %s", ErrProvider, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, models.Company{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	result := resp.Chart.Result[0]
	series = parseYFCloses(result)
	if len(series) == 0 {
		return nil, models.Company{}, fmt.Errorf("%w: %s has no prices in range", ErrTickerNotFound, ticker)
	}

	company = models.Company{
		Ticker:   utils.NormalizeTicker(ticker),
		Name:     coalesce(result.Meta.LongName, result.Meta.ShortName),
		Exchange: result.Meta.ExchangeName,
		Currency: result.Meta.Currency,
	}
	return series, company, nil
}

// parseYFCloses converts chart timestamps into exchange-local calendar days.
// Null closes are skipped; when a day repeats (a live bar after the daily
// one) the later value wins.
func parseYFCloses(result yfChartResult) models.PriceSeries {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	closes := result.Indicators.Quote[0].Close
	series := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := utils.DateOf(time.Unix(ts+result.Meta.GMTOffset, 0))
		p := models.PricePoint{Date: day, Close: utils.Round2(*closes[i])}

		switch n := len(series); {
		case n > 0 && series[n-1].Date.Equal(day):
			series[n-1] = p
		case n > 0 && day.Before(series[n-1].Date):
			continue
		default:
			series = append(series, p)
		}
	}
	return series
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
