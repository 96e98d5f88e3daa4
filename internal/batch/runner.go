package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/internal/storage"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// ErrRunInProgress is returned when a run is requested while another one
// has not finished.
var ErrRunInProgress = errors.New("batch run already in progress")

// Analyzer produces a fresh report, skipping any cached copy.
type Analyzer interface {
	Refresh(ctx context.Context, ticker string, days int) (*models.SentimentReport, error)
}

// Sink persists a report.
type Sink interface {
	SaveReport(ctx context.Context, r *models.SentimentReport) (storage.WriteSummary, error)
}

// Options tunes a Runner.
type Options struct {
	Groups int
	Days   int
	Pause  time.Duration
	Now    func() time.Time
}

// Progress is reported once when a run starts and after every ticker.
type Progress struct {
	RunID  string `json:"run_id"`
	Group  int    `json:"group"`
	Ticker string `json:"ticker,omitempty"`
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Status string `json:"status"` // started|ok|failed|finished
	Error  string `json:"error,omitempty"`
	Rows   int    `json:"rows,omitempty"`
}

// RunSummary describes a completed run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Group      int       `json:"group"`
	Tickers    int       `json:"tickers"`
	OK         int       `json:"ok"`
	Failed     []string  `json:"failed"`
	Rows       int       `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Runner analyzes and persists one rotation group at a time.
type Runner struct {
	analyzer Analyzer
	sink     Sink
	groups   [][]string
	opts     Options
	log      *logger.Logger

	progress func(Progress)
	running  atomic.Bool
}

// NewRunner creates a Runner over the given ticker universe.
func NewRunner(analyzer Analyzer, sink Sink, universe []string, opts Options, log *logger.Logger) *Runner {
	if opts.Groups < 1 {
		opts.Groups = DefaultGroups
	}
	if opts.Days < 1 {
		opts.Days = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Get()
	}
	return &Runner{
		analyzer: analyzer,
		sink:     sink,
		groups:   Rotation(universe, opts.Groups),
		opts:     opts,
		log:      log.Named("batch"),
	}
}

// OnProgress registers a callback invoked synchronously for each progress
// event. It must be set before the first run.
func (r *Runner) OnProgress(fn func(Progress)) { r.progress = fn }

// Running reports whether a run is in progress.
func (r *Runner) Running() bool { return r.running.Load() }

// Groups returns the number of rotation groups.
func (r *Runner) Groups() int { return len(r.groups) }

// TodaysGroup returns the rotation group index for the current day.
func (r *Runner) TodaysGroup() int {
	return GroupIndex(utils.DateOf(r.opts.Now()), r.opts.Groups)
}

// Run processes today's rotation group.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	return r.RunGroup(ctx, r.TodaysGroup(), uuid.NewString())
}

// RunGroup processes one group under the given run id. A ticker that fails
// is logged and counted, and the run moves on to the next one.
func (r *Runner) RunGroup(ctx context.Context, group int, runID string) (*RunSummary, error) {
	if group < 0 || group >= len(r.groups) {
		return nil, fmt.Errorf("group %d out of range 0..%d", group, len(r.groups)-1)
	}
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	tickers := r.groups[group]
	sum := &RunSummary{
		RunID:     runID,
		Group:     group,
		Tickers:   len(tickers),
		Failed:    []string{},
		StartedAt: r.opts.Now(),
	}
	log := r.log.With("run_id", runID, "group", group)
	log.Infow("batch run started", "tickers", len(tickers), "days", r.opts.Days)
	r.emit(Progress{RunID: runID, Group: group, Total: len(tickers), Status: "started"})

	for i, ticker := range tickers {
		if i > 0 {
			if err := sleepCtx(ctx, r.opts.Pause); err != nil {
				log.Warnw("batch run cancelled", "processed", i, "error", err)
				sum.FinishedAt = r.opts.Now()
				return sum, err
			}
		}

		p := Progress{RunID: runID, Group: group, Ticker: ticker, Index: i + 1, Total: len(tickers)}
		rows, err := r.processTicker(ctx, ticker)
		if err != nil {
			log.Errorw("ticker failed", "ticker", ticker, "error", err)
			metrics.BatchTickers.WithLabelValues("failed").Inc()
			sum.Failed = append(sum.Failed, ticker)
			p.Status, p.Error = "failed", err.Error()
		} else {
			metrics.BatchTickers.WithLabelValues("ok").Inc()
			sum.OK++
			sum.Rows += rows
			p.Status, p.Rows = "ok", rows
		}
		r.emit(p)
	}

	sum.FinishedAt = r.opts.Now()
	metrics.BatchLastRun.Set(float64(sum.FinishedAt.Unix()))
	log.Infow("batch run complete", "ok", sum.OK, "failed", len(sum.Failed), "rows", sum.Rows)
	r.emit(Progress{RunID: runID, Group: group, Index: len(tickers), Total: len(tickers), Status: "finished", Rows: sum.Rows})
	return sum, nil
}

func (r *Runner) processTicker(ctx context.Context, ticker string) (int, error) {
	report, err := r.analyzer.Refresh(ctx, ticker, r.opts.Days)
	if err != nil {
		return 0, fmt.Errorf("analyze: %w", err)
	}
	written, err := r.sink.SaveReport(ctx, report)
	if err != nil {
		return 0, fmt.Errorf("persist: %w", err)
	}
	return written.Total(), nil
}

func (r *Runner) emit(p Progress) {
	if r.progress != nil {
		r.progress(p)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
