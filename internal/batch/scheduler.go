package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/seenimoa/tickerpulse/pkg/logger"
)

// DefaultSchedule runs the rotation once a day at 06:00.
const DefaultSchedule = "0 6 * * *"

// Scheduler triggers Runner.Run on a cron schedule.
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron
	log    *logger.Logger

	mu      sync.Mutex
	entry   cron.EntryID
	started bool
	last    *RunSummary
}

// NewScheduler creates a scheduler for runner.
func NewScheduler(runner *Runner, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Get()
	}
	return &Scheduler{
		runner: runner,
		cron:   cron.New(),
		log:    log.Named("scheduler"),
	}
}

// Start registers the schedule and starts the cron loop. ctx bounds every
// triggered run.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already running")
	}
	if spec == "" {
		spec = DefaultSchedule
	}

	id, err := s.cron.AddFunc(spec, func() { s.trigger(ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	s.cron.Start()
	s.started = true

	s.log.Infow("scheduler started", "schedule", spec, "next_run", s.cron.Entry(id).Next)
	return nil
}

// Stop halts the cron loop and waits for a running job to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// LastRun returns the summary of the most recent scheduled run, if any.
func (s *Scheduler) LastRun() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) trigger(ctx context.Context) {
	sum, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.log.Warn("skipping scheduled run, previous run still in progress")
			return
		}
		s.log.Errorw("scheduled run failed", "error", err)
	}
	if sum != nil {
		s.mu.Lock()
		s.last = sum
		s.mu.Unlock()
	}
}
