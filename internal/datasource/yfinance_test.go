package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/tickerpulse/pkg/utils"
)

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD","exchangeName":"NMS",
"longName":"Apple Inc.","shortName":"Apple","gmtoffset":-18000},
"timestamp":[1772461800,1772548200,1772634600,1772649000],
"indicators":{"quote":[{"close":[100.004,null,101.456,101.9]}]}}],"error":null}}`

func TestYFinanceGetDailyClose(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	y := NewYFinance(WithYahooBaseURL(srv.URL), WithYahooRateLimit(100))
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	series, company, err := y.GetDailyClose(context.Background(), "aapl", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, "period1=1772323200")

	require.Len(t, series, 2, "null close skipped, repeated day collapsed")
	assert.Equal(t, "2026-03-02", utils.DateKey(series[0].Date))
	assert.Equal(t, 100.0, series[0].Close)
	assert.Equal(t, "2026-03-04", utils.DateKey(series[1].Date))
	assert.Equal(t, 101.9, series[1].Close, "later bar for the same day wins")

	assert.Equal(t, "Apple Inc.", company.Name)
	assert.Equal(t, "AAPL", company.Ticker)
	assert.Equal(t, "USD", company.Currency)
}

func TestYFinanceNotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404 with chart error", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"no closes", http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"ZZZZ"},"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			y := NewYFinance(WithYahooBaseURL(srv.URL))
			_, _, err := y.GetDailyClose(context.Background(), "ZZZZ", time.Now().AddDate(0, 0, -5), time.Now())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTickerNotFound), "got %v", err)
		})
	}
}

func TestYFinanceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	y := NewYFinance(WithYahooBaseURL(srv.URL))
	_, _, err := y.GetDailyClose(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTickerNotFound))

	var httpErr *ErrHTTP
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestParseYFClosesEmpty(t *testing.T) {
	assert.Nil(t, parseYFCloses(yfChartResult{}))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", coalesce("", "  ", "b", "c"))
	assert.Equal(t, "", coalesce())
}

func TestErrHTTP(t *testing.T) {
	err := &ErrHTTP{StatusCode: 404, Status: "Not Found", Body: "page not found"}
	assert.Equal(t, "HTTP 404 Not Found: page not found", err.Error())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, "success", StatusOf(nil))
	assert.Equal(t, "not_found", StatusOf(ErrTickerNotFound))
	assert.Equal(t, "error", StatusOf(ErrProvider))
}
