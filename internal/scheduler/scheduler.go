package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// Runner is the daily job the scheduler fires. Satisfied by
// notifier.Notifier; tests substitute their own implementation.
type Runner interface {
	RunOnce(ctx context.Context, now time.Time) (*domain.RunResult, error)
}

// State is the scheduler lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateScheduled State = "scheduled"
)

// Scheduler fires the notification run once a day at a fixed wall-clock
// time in a fixed named time zone.
//
// Each Scheduler owns its own state instead of relying on a package-level
// flag, so independent instances (for example in tests) never interfere.
// Start and Stop are idempotent; fires are serialized by a single-flight
// guard — a fire arriving while a run is still in flight is skipped with a
// warning, not queued.
type Scheduler struct {
	runner Runner
	logger *zap.Logger
	spec   string
	loc    *time.Location

	mu      sync.Mutex // guards cron, entryID, state
	cron    *cron.Cron
	entryID cron.EntryID
	state   State

	runMu sync.Mutex // single-flight guard around RunOnce
}

// New creates an idle scheduler. spec is a standard five-field cron
// expression evaluated in the tz location (e.g. "0 12 * * *" in
// "Europe/Berlin").
func New(runner Runner, logger *zap.Logger, spec, tz string) (*Scheduler, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	return &Scheduler{
		runner: runner,
		logger: logger,
		spec:   spec,
		loc:    loc,
		state:  StateIdle,
	}, nil
}

// Start registers the daily job. Calling Start while already scheduled is
// a logged no-op, never an error.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScheduled {
		s.logger.Info("scheduler already running")
		return nil
	}

	c := cron.New(cron.WithLocation(s.loc))
	id, err := c.AddFunc(s.spec, s.fire)
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", s.spec, err)
	}
	c.Start()

	s.cron = c
	s.entryID = id
	s.state = StateScheduled
	s.logger.Info("scheduler started",
		zap.String("spec", s.spec),
		zap.String("timezone", s.loc.String()),
		zap.Time("next_fire", c.Entry(id).Next),
	)
	return nil
}

// Stop deregisters the job and waits for an in-flight run to finish.
// Stopping an idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return
	}

	<-s.cron.Stop().Done()
	s.cron = nil
	s.state = StateIdle
	s.logger.Info("scheduler stopped")
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextFire returns the next scheduled firing instant, or the zero time
// when the scheduler is idle.
func (s *Scheduler) NextFire() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateScheduled {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// fire runs one notification pass with the firing instant as now.
// The TryLock is the overlap guard: if the previous run is still going,
// this fire is dropped rather than stacked behind it. A failed run still
// releases the guard — a failure is a completed run for overlap purposes.
func (s *Scheduler) fire() {
	if !s.runMu.TryLock() {
		s.logger.Warn("skipping scheduled run: previous run still in progress")
		return
	}
	defer s.runMu.Unlock()

	now := time.Now().In(s.loc)
	s.logger.Info("scheduled notification run firing", zap.Time("now", now))

	result, err := s.runner.RunOnce(context.Background(), now)
	if err != nil {
		s.logger.Error("scheduled notification run failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled notification run finished",
		zap.Int("notifications_sent", result.NotificationsSent),
		zap.Int("total_customers", result.TotalCustomers),
	)
}
