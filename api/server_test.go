package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seenimoa/tickerpulse/internal/batch"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/report"
	"github.com/seenimoa/tickerpulse/internal/storage"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeAnalyzer struct {
	report *models.SentimentReport
	err    error

	mu       sync.Mutex
	lastDays int
}

func (f *fakeAnalyzer) DefaultDays() int { return 30 }

func (f *fakeAnalyzer) Analyze(_ context.Context, ticker string, days int) (*models.SentimentReport, error) {
	f.mu.Lock()
	f.lastDays = days
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	r.Ticker = utils.NormalizeTicker(ticker)
	return &r, nil
}

type fakeRunner struct {
	running bool
	done    chan struct{}

	mu    sync.Mutex
	group int
	runID string
}

func (f *fakeRunner) TodaysGroup() int { return 3 }
func (f *fakeRunner) Groups() int      { return 5 }
func (f *fakeRunner) Running() bool    { return f.running }

func (f *fakeRunner) RunGroup(_ context.Context, group int, runID string) (*batch.RunSummary, error) {
	f.mu.Lock()
	f.group, f.runID = group, runID
	f.mu.Unlock()
	defer close(f.done)
	return &batch.RunSummary{RunID: runID, Group: group}, nil
}

type fakeCache struct{ err error }

func (f fakeCache) Health(context.Context) error { return f.err }

type fakeSchedule struct{ last *batch.RunSummary }

func (f fakeSchedule) LastRun() *batch.RunSummary { return f.last }

func ptr(v float64) *float64 { return &v }

func sampleReport() *models.SentimentReport {
	d0 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 1)
	d2 := d0.AddDate(0, 0, 2)
	return &models.SentimentReport{
		Ticker:  "AAPL",
		Company: models.Company{Ticker: "AAPL", Name: "Apple Inc."},
		Days:    7,
		Prices: models.PriceSeries{
			{Date: d0, Close: 100}, {Date: d1, Close: 101}, {Date: d2, Close: 99},
		},
		Daily: []models.DailySentiment{
			{Date: d0, Average: 0.5}, {Date: d1, Average: -0.2},
		},
		Combined: models.CombinedFrame{
			{Date: d0, Close: ptr(100), Sentiment: ptr(0.5)},
			{Date: d1, Close: ptr(101), Sentiment: ptr(-0.2)},
			{Date: d2, Close: ptr(99)},
		},
		Correlation: models.Correlation{},
		TopHeadlines: []models.TextEvent{
			{Date: d1, Sentiment: 0.6, Origin: models.OriginNews, Title: "Apple beats estimates", Source: "Reuters", Link: "https://example.com/a"},
		},
		GeneratedAt: time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC),
	}
}

func testServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}
	deps.Logger = logger.Nop()
	srv := NewServer(deps)
	go srv.wsHub.Run()
	t.Cleanup(srv.wsHub.Stop)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, Deps{Runner: &fakeRunner{}})

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, false, data["batch_running"])
	}
}

func TestHandleHealthReportsCacheAndLastRun(t *testing.T) {
	last := &batch.RunSummary{RunID: "run-1", Group: 2, Tickers: 100, OK: 99, Failed: []string{"ZZZZ"}}
	srv := testServer(t, Deps{Cache: fakeCache{}, Schedule: fakeSchedule{last: last}})

	rec := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "ok", data["cache"])
	run := data["last_run"].(map[string]interface{})
	assert.Equal(t, "run-1", run["run_id"])
	assert.Equal(t, 99.0, run["ok"])

	srv = testServer(t, Deps{Cache: fakeCache{err: errors.New("connection refused")}, Schedule: fakeSchedule{}})
	rec = do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "unavailable", data["cache"])
	assert.Contains(t, data, "last_run")
	assert.Nil(t, data["last_run"], "no scheduled run yet")
}

func TestHandleHealthOmitsUnconfiguredParts(t *testing.T) {
	srv := testServer(t, Deps{})

	rec := do(t, srv, http.MethodGet, "/health", "")
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.NotContains(t, data, "cache")
	assert.NotContains(t, data, "last_run")
	assert.NotContains(t, data, "storage")
}

// ════════════════════════════════════════════════════════════════════
// Sentiment
// ════════════════════════════════════════════════════════════════════

func TestHandleSentiment(t *testing.T) {
	an := &fakeAnalyzer{report: sampleReport()}
	srv := testServer(t, Deps{Analyzer: an})

	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/msft?days=14", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool                   `json:"success"`
		Data    models.SentimentReport `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "MSFT", body.Data.Ticker)
	assert.Len(t, body.Data.Prices, 3)
	assert.Len(t, body.Data.Combined, 3)
	assert.Nil(t, body.Data.Combined[2].Sentiment)
	assert.Equal(t, 14, an.lastDays)
}

func TestHandleSentimentDefaultDays(t *testing.T) {
	an := &fakeAnalyzer{report: sampleReport()}
	srv := testServer(t, Deps{Analyzer: an})

	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, an.lastDays)
}

func TestHandleSentimentErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		err     error
		status  int
		message string
	}{
		{"bad days", "/api/v1/sentiment/AAPL?days=abc", nil, http.StatusBadRequest, "days must be a positive integer"},
		{"zero days", "/api/v1/sentiment/AAPL?days=0", nil, http.StatusBadRequest, "days must be a positive integer"},
		{"invalid ticker", "/api/v1/sentiment/AAPL", fmt.Errorf("%w: %q", pipeline.ErrInvalidTicker, "$$$"), http.StatusBadRequest, "invalid ticker"},
		{"not found", "/api/v1/sentiment/ZZZZZ", fmt.Errorf("prices: %w", datasource.ErrTickerNotFound), http.StatusNotFound, pipeline.NotFoundMessage},
		{"upstream failure", "/api/v1/sentiment/AAPL", errors.New("connection reset"), http.StatusBadGateway, "failed to fetch market data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{report: sampleReport(), err: tt.err}})

			rec := do(t, srv, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.message)
		})
	}
}

func TestHandleSentimentWithoutAnalyzer(t *testing.T) {
	srv := testServer(t, Deps{})
	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/AAPL", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Charts & dashboard
// ════════════════════════════════════════════════════════════════════

func TestHandleChart(t *testing.T) {
	srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{report: sampleReport()}})

	for _, kind := range []string{"price", "sentiment", "overlay"} {
		t.Run(kind, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/AAPL/chart/"+kind, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
		})
	}
}

func TestHandleChartUnknownKind(t *testing.T) {
	srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{report: sampleReport()}})

	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/AAPL/chart/candles", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleXLSX(t *testing.T) {
	srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{report: sampleReport()}})

	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/aapl/xlsx?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="AAPL_7d.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{report.SheetPrices, report.SheetSentiment, report.SheetCombined, report.SheetHeadlines, report.SheetPosts}, f.GetSheetList())
	rows, err := f.GetRows(report.SheetPrices)
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header plus three closes")
}

func TestHandleXLSXNotFound(t *testing.T) {
	srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{err: datasource.ErrTickerNotFound}})

	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/ZZZZZ/xlsx", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandleDashboard(t *testing.T) {
	srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{report: sampleReport()}})

	rec := do(t, srv, http.MethodGet, "/dashboard/aapl?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Apple beats estimates")
	assert.Contains(t, body, "Not enough data to compute sentiment-price correlation.")
	assert.Contains(t, body, "No recent Reddit posts found.")
}

func TestHandleDashboardNotFound(t *testing.T) {
	srv := testServer(t, Deps{Analyzer: &fakeAnalyzer{err: datasource.ErrTickerNotFound}})

	rec := do(t, srv, http.MethodGet, "/dashboard/ZZZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), pipeline.NotFoundMessage)
}

// ════════════════════════════════════════════════════════════════════
// History
// ════════════════════════════════════════════════════════════════════

func TestHandleHistory(t *testing.T) {
	store, err := storage.Open(config.StorageConfig{Driver: "sqlite", DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	today := utils.Today()
	rep := &models.SentimentReport{
		Ticker: "AAPL",
		Prices: models.PriceSeries{
			{Date: utils.DaysAgo(today, 3), Close: 100},
			{Date: utils.DaysAgo(today, 2), Close: 102},
			{Date: utils.DaysAgo(today, 60), Close: 80},
		},
		Daily: []models.DailySentiment{
			{Date: utils.DaysAgo(today, 2), Average: 0.25},
		},
	}
	_, err = store.SaveReport(context.Background(), rep)
	require.NoError(t, err)

	srv := testServer(t, Deps{Store: store})

	rec := do(t, srv, http.MethodGet, "/api/v1/history/aapl?days=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data HistoryResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "AAPL", body.Data.Ticker)
	require.Len(t, body.Data.Prices, 2)
	assert.Equal(t, 100.0, body.Data.Prices[0].Close)
	assert.Equal(t, 102.0, body.Data.Prices[1].Close)
	require.Len(t, body.Data.Sentiment, 1)
	assert.Equal(t, 0.25, body.Data.Sentiment[0].Average)
}

func TestHandleHistoryErrors(t *testing.T) {
	srv := testServer(t, Deps{})
	rec := do(t, srv, http.MethodGet, "/api/v1/history/AAPL", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	store, err := storage.Open(config.StorageConfig{Driver: "sqlite", DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	srv = testServer(t, Deps{Store: store})

	rec = do(t, srv, http.MethodGet, "/api/v1/history/not%20a%20ticker", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Scrape
// ════════════════════════════════════════════════════════════════════

func TestHandleScrapeUsesTodaysGroup(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	srv := testServer(t, Deps{Runner: runner})

	rec := do(t, srv, http.MethodPost, "/api/v1/scrape", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body struct {
		Data ScrapeResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3, body.Data.Group)
	assert.NotEmpty(t, body.Data.RunID)

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("batch run never started")
	}
	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, 3, runner.group)
	assert.Equal(t, body.Data.RunID, runner.runID)
}

func TestHandleScrapeExplicitGroup(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	srv := testServer(t, Deps{Runner: runner})

	rec := do(t, srv, http.MethodPost, "/api/v1/scrape", `{"group": 1}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	<-runner.done
	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, 1, runner.group)
}

func TestHandleScrapeErrors(t *testing.T) {
	srv := testServer(t, Deps{})
	rec := do(t, srv, http.MethodPost, "/api/v1/scrape", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv = testServer(t, Deps{Runner: &fakeRunner{running: true}})
	rec = do(t, srv, http.MethodPost, "/api/v1/scrape", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	srv = testServer(t, Deps{Runner: &fakeRunner{}})
	rec = do(t, srv, http.MethodPost, "/api/v1/scrape", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScrapeRejectsOutOfRangeGroup(t *testing.T) {
	for _, body := range []string{`{"group": 5}`, `{"group": -1}`, `{"group": 42}`} {
		t.Run(body, func(t *testing.T) {
			// A nil done channel makes RunGroup panic, so any accepted run fails the test.
			runner := &fakeRunner{}
			srv := testServer(t, Deps{Runner: runner})

			rec := do(t, srv, http.MethodPost, "/api/v1/scrape", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, "group must be within 0..4")

			runner.mu.Lock()
			defer runner.mu.Unlock()
			assert.Empty(t, runner.runID)
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Config
// ════════════════════════════════════════════════════════════════════

func TestHandleGetConfigHidesSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.NewsAPI.APIKey = "newsapi-secret-123"
	cfg.Reddit.ClientSecret = "reddit-secret-456"
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisPassword = "redis-secret-789"
	cfg.Storage.DSN = "user:dbpass@tcp(localhost)/stocks"
	cfg.Analysis.TopN = 10

	srv := testServer(t, Deps{Config: cfg})
	rec := do(t, srv, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, secret := range []string{"newsapi-secret-123", "reddit-secret-456", "redis-secret-789", "dbpass"} {
		assert.NotContains(t, body, secret)
	}
	assert.Contains(t, body, `"provider":"newsapi"`)
}

func TestHandleGetConfigKeys(t *testing.T) {
	cfg := &config.Config{}
	cfg.NewsAPI.APIKey = "newsapi-secret-123"

	srv := testServer(t, Deps{Config: cfg})
	rec := do(t, srv, http.MethodGet, "/api/v1/config/keys", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "newsapi-secret-123")
}

// ════════════════════════════════════════════════════════════════════
// Helpers & WebSocket
// ════════════════════════════════════════════════════════════════════

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusTeapot, "nope")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "nope", resp.Error)
}

func TestWSHubBroadcast(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()
	defer hub.Stop()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 4)}
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(WSMessage{Type: "batch_progress"})
	select {
	case msg := <-client.send:
		assert.Equal(t, "batch_progress", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketStreamsBatchProgress(t *testing.T) {
	srv := testServer(t, Deps{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// The pong proves the client is registered with the hub.
	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Type)

	srv.BatchProgress(batch.Progress{RunID: "r1", Ticker: "AAPL", Status: "ok"})
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "batch_progress", msg.Type)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, "AAPL", data["ticker"])
}

func TestRequestLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	srv := NewServer(Deps{Analyzer: &fakeAnalyzer{err: datasource.ErrTickerNotFound}, Logger: log})
	rec := do(t, srv, http.MethodGet, "/api/v1/sentiment/AAPL?days=3", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	do(t, srv, http.MethodGet, "/health", "")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	fields := first.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/sentiment/AAPL", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Contains(t, fields, "duration")
	assert.Contains(t, fields, "bytes")

	assert.EqualValues(t, http.StatusOK, entries[1].ContextMap()["status"])
}

func TestRequestLoggerWarnsOnServerError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	h := requestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusInternalServerError, entries[0].ContextMap()["status"])
}

func TestServesLandingPage(t *testing.T) {
	srv := testServer(t, Deps{})

	rec := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/dashboard/")
}
