package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// fakeRunner counts invocations and can block to simulate a slow run.
type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{} // when non-nil, RunOnce waits here
	started chan struct{} // signalled when RunOnce begins
}

func (r *fakeRunner) RunOnce(_ context.Context, _ time.Time) (*domain.RunResult, error) {
	r.mu.Lock()
	r.calls++
	block := r.block
	started := r.started
	r.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	if r.err != nil {
		return nil, r.err
	}
	return &domain.RunResult{}, nil
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newScheduler(t *testing.T, r Runner) *Scheduler {
	t.Helper()
	s, err := New(r, zap.NewNop(), "0 12 * * *", "Europe/Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	s := newScheduler(t, &fakeRunner{})
	defer s.Stop()

	if s.State() != StateIdle {
		t.Fatalf("expected idle before start, got %s", s.State())
	}
	if err := s.Start(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("second start must be a no-op, got %v", err)
	}

	if s.State() != StateScheduled {
		t.Fatalf("expected scheduled, got %s", s.State())
	}
	if entries := s.cron.Entries(); len(entries) != 1 {
		t.Fatalf("expected exactly one registered job after double start, got %d", len(entries))
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := newScheduler(t, &fakeRunner{})

	s.Stop() // stop while idle is a no-op
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Stop()
	s.Stop()
	if s.State() != StateIdle {
		t.Fatalf("expected idle after stop, got %s", s.State())
	}
}

func TestScheduler_StartAfterStop(t *testing.T) {
	s := newScheduler(t, &fakeRunner{})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Stop()
	if err := s.Start(); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	defer s.Stop()
	if s.State() != StateScheduled {
		t.Fatalf("expected scheduled, got %s", s.State())
	}
}

func TestScheduler_NextFire(t *testing.T) {
	s := newScheduler(t, &fakeRunner{})

	if !s.NextFire().IsZero() {
		t.Fatal("expected zero next fire while idle")
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	next := s.NextFire()
	if next.IsZero() {
		t.Fatal("expected a next fire time while scheduled")
	}
	if next.Hour() != 12 || next.Minute() != 0 {
		t.Fatalf("expected next fire at 12:00 local, got %v", next)
	}
}

func TestScheduler_InvalidTimezone(t *testing.T) {
	if _, err := New(&fakeRunner{}, zap.NewNop(), "0 12 * * *", "Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}

func TestScheduler_InvalidCronSpec(t *testing.T) {
	s, err := New(&fakeRunner{}, zap.NewNop(), "not a cron spec", "UTC")
	if err != nil {
		t.Fatalf("spec is validated at start, not construction: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if s.State() != StateIdle {
		t.Fatalf("failed start must leave the scheduler idle, got %s", s.State())
	}
}

// A fire arriving while the previous run is still in flight is skipped,
// not queued: the runner must see exactly one invocation.
func TestScheduler_OverlappingFireIsSkipped(t *testing.T) {
	runner := &fakeRunner{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := newScheduler(t, runner)

	go s.fire()
	<-runner.started // first run is now in flight

	s.fire() // overlapping fire: must be dropped immediately
	if got := runner.callCount(); got != 1 {
		t.Fatalf("expected 1 invocation while run in flight, got %d", got)
	}

	close(runner.block) // let the first run finish

	// The guard is released once the run returns; the next fire proceeds.
	deadline := time.After(2 * time.Second)
	for runner.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("guard was not released after the run completed")
		default:
		}
		s.fire()
	}
}

// A failed run still counts as completed for overlap purposes.
func TestScheduler_FailedRunReleasesGuard(t *testing.T) {
	runner := &fakeRunner{err: errors.New("database down")}
	s := newScheduler(t, runner)

	s.fire()
	s.fire()

	if got := runner.callCount(); got != 2 {
		t.Fatalf("expected both fires to run, got %d", got)
	}
}
