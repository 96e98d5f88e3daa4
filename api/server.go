// Package api provides the HTTP REST API server for tickerpulse.
//
// It exposes the sentiment report, its charts and dashboard, stored
// history, batch triggering and WebSocket progress streaming.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/seenimoa/tickerpulse/internal/batch"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/report"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
	"github.com/seenimoa/tickerpulse/web"
)

// Version is reported by /health. It is set by the CLI at startup.
var Version = "dev"

// Analyzer runs (or serves from cache) a sentiment analysis.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, days int) (*models.SentimentReport, error)
	DefaultDays() int
}

// HistoryStore reads persisted series.
type HistoryStore interface {
	PriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error)
	SentimentHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.DailySentiment, error)
	Ping(ctx context.Context) error
}

// BatchRunner runs a rotation group.
type BatchRunner interface {
	RunGroup(ctx context.Context, group int, runID string) (*batch.RunSummary, error)
	TodaysGroup() int
	Groups() int
	Running() bool
}

// CacheHealth reports whether an external cache backend is reachable.
type CacheHealth interface {
	Health(ctx context.Context) error
}

// RunHistory reports the most recent scheduled batch run.
type RunHistory interface {
	LastRun() *batch.RunSummary
}

// Deps are the collaborators a Server is built from. Store and Runner may
// be nil; their routes then answer 503. Cache and Schedule only add fields
// to /health.
type Deps struct {
	Config   *config.Config
	Analyzer Analyzer
	Store    HistoryStore
	Runner   BatchRunner
	Cache    CacheHealth
	Schedule RunHistory
	Logger   *logger.Logger
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	analyzer Analyzer
	store    HistoryStore
	runner   BatchRunner
	cache    CacheHealth
	schedule RunHistory
	wsHub    *WSHub
	log      *logger.Logger

	// runs outlive the request that started them; shutdown cancels them.
	runCtx    context.Context
	cancelRun context.CancelFunc
	runs      sync.WaitGroup
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(deps Deps) *Server {
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		cfg:       deps.Config,
		analyzer:  deps.Analyzer,
		store:     deps.Store,
		runner:    deps.Runner,
		cache:     deps.Cache,
		schedule:  deps.Schedule,
		wsHub:     NewWSHub(),
		log:       deps.Logger.Named("api"),
		runCtx:    ctx,
		cancelRun: cancel,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// BatchProgress forwards a batch progress event to WebSocket clients.
func (s *Server) BatchProgress(p batch.Progress) {
	s.wsHub.Broadcast(WSMessage{Type: "batch_progress", Data: p})
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	readTimeout := s.cfg.API.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.API.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 120 * time.Second
	}

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("HTTP server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.cancelRun()
	err := httpSrv.Shutdown(shutdownCtx)
	s.runs.Wait()
	s.wsHub.Stop()
	return err
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/dashboard/{ticker}", s.handleDashboard)
	r.Handle("/*", http.FileServer(http.FS(web.StaticFS())))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			if t := s.cfg.Analysis.RequestTimeout; t > 0 {
				r.Use(middleware.Timeout(t))
			}
			r.Get("/sentiment/{ticker}", s.handleSentiment)
			r.Get("/sentiment/{ticker}/chart/{kind}", s.handleChart)
			r.Get("/sentiment/{ticker}/xlsx", s.handleXLSX)
		})
		r.Get("/history/{ticker}", s.handleHistory)

		r.Post("/scrape", s.handleScrape)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ScrapeRequest optionally pins the rotation group of a manual run.
type ScrapeRequest struct {
	Group *int `json:"group,omitempty"`
}

// ScrapeResponse identifies an accepted batch run.
type ScrapeResponse struct {
	RunID string `json:"run_id"`
	Group int    `json:"group"`
}

// HistoryResponse holds persisted series for one ticker.
type HistoryResponse struct {
	Ticker    string                  `json:"ticker"`
	From      string                  `json:"from"`
	To        string                  `json:"to"`
	Prices    models.PriceSeries      `json:"prices"`
	Sentiment []models.DailySentiment `json:"sentiment"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":     "ok",
		"version":    Version,
		"time":       time.Now().UTC().Format(time.RFC3339),
		"ws_clients": s.wsHub.ClientCount(),
	}
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			status["storage"] = "unavailable"
		} else {
			status["storage"] = "ok"
		}
	}
	if s.cache != nil {
		if err := s.cache.Health(r.Context()); err != nil {
			s.log.Warnw("cache health check failed", "error", err)
			status["cache"] = "unavailable"
		} else {
			status["cache"] = "ok"
		}
	}
	if s.runner != nil {
		status["batch_running"] = s.runner.Running()
	}
	if s.schedule != nil {
		status["last_run"] = s.schedule.LastRun()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: status})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := report.ChartKind(strings.ToLower(chi.URLParam(r, "kind")))
	switch kind {
	case report.ChartPrice, report.ChartSentiment, report.ChartOverlay:
	default:
		writeError(w, http.StatusBadRequest, "chart kind must be price, sentiment or overlay")
		return
	}

	rep, ok := s.analyze(w, r)
	if !ok {
		return
	}
	cfg := report.DefaultChartConfig()
	cfg.Title = fmt.Sprintf("%s %s", rep.Ticker, strings.ToUpper(string(kind[:1]))+string(kind[1:]))
	svg, err := report.Chart(kind, rep, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

// xlsxContentType is the IANA media type for Office Open XML workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.analyze(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.EncodeXLSX(rep, &buf); err != nil {
		s.log.Errorw("render workbook", "ticker", rep.Ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%dd.xlsx"`, rep.Ticker, rep.Days))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.analyze(w, r)
	if !ok {
		return
	}
	html, err := report.GenerateHTML(rep, report.DefaultReportConfig())
	if err != nil {
		s.log.Errorw("render dashboard", "ticker", rep.Ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if !utils.ValidTicker(ticker) {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}
	days, err := parseDays(r, 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	to := utils.Today()
	from := utils.DaysAgo(to, days)
	prices, err := s.store.PriceHistory(r.Context(), ticker, from, to)
	if err != nil {
		s.log.Errorw("price history", "ticker", ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	daily, err := s.store.SentimentHistory(r.Context(), ticker, from, to)
	if err != nil {
		s.log.Errorw("sentiment history", "ticker", ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HistoryResponse{
			Ticker:    ticker,
			From:      utils.DateKey(from),
			To:        utils.DateKey(to),
			Prices:    prices,
			Sentiment: daily,
		},
	})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "batch ingestion is not configured")
		return
	}

	var req ScrapeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}
	group := s.runner.TodaysGroup()
	if req.Group != nil {
		group = *req.Group
	}
	if n := s.runner.Groups(); group < 0 || group >= n {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("group must be within 0..%d, got %d", n-1, group))
		return
	}
	if s.runner.Running() {
		writeError(w, http.StatusConflict, batch.ErrRunInProgress.Error())
		return
	}

	runID := uuid.NewString()
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		sum, err := s.runner.RunGroup(s.runCtx, group, runID)
		if err != nil {
			s.log.Warnw("manual batch run failed", "run_id", runID, "group", group, "error", err)
			s.wsHub.Broadcast(WSMessage{Type: "batch_error", Data: map[string]string{"run_id": runID, "error": err.Error()}})
			return
		}
		s.wsHub.Broadcast(WSMessage{Type: "batch_complete", Data: sum})
	}()

	writeJSON(w, http.StatusAccepted, APIResponse{
		Success: true,
		Data:    ScrapeResponse{RunID: runID, Group: group},
	})
}

// analyze runs the pipeline for the request's ticker and days, writing the
// error response itself when it fails.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*models.SentimentReport, bool) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return nil, false
	}
	days, err := parseDays(r, s.analyzer.DefaultDays())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	rep, err := s.analyzer.Analyze(r.Context(), chi.URLParam(r, "ticker"), days)
	switch {
	case err == nil:
		return rep, true
	case errors.Is(err, pipeline.ErrInvalidTicker):
		writeError(w, http.StatusBadRequest, "invalid ticker")
	case errors.Is(err, datasource.ErrTickerNotFound):
		writeError(w, http.StatusNotFound, pipeline.NotFoundMessage)
	default:
		s.log.Errorw("analysis failed", "ticker", chi.URLParam(r, "ticker"), "days", days, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch market data")
	}
	return nil, false
}

// parseDays reads the days query parameter. Values above the maximum are
// clamped by the pipeline; non-numeric or non-positive values are rejected.
func parseDays(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("days must be a positive integer, got %q", raw)
	}
	return days, nil
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Warnw("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
