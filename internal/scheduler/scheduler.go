// Package scheduler runs the daily background jobs on a timezone-aware
// timer loop.
//
// This is deliberately not a cron library: the job set is small and
// strictly daily, so the scheduler keeps a next-fire time per job,
// sleeps until the earliest one, and dispatches each due job on its own
// goroutine so a slow refresh never delays the other jobs.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clock"
)

// Job is a schedulable unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
	// OncePerDay jobs are skipped when they already completed for the
	// current operating day. A manual trigger bypasses the check.
	OncePerDay() bool
}

// Schedule is a daily local-time anchor in the scheduler's timezone.
type Schedule struct {
	Hour   int
	Minute int
}

// String renders the anchor as "HH:MM".
func (s Schedule) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// NextAfter returns the first instant matching the anchor strictly
// after t, in t's location.
func (s Schedule) NextAfter(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// State is the lifecycle state of a job. Idle and Running describe the
// entry itself; Completed and Failed are terminal run outcomes, recorded
// as the entry's last outcome when it settles back to idle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// JobStatus is a snapshot of one registered job.
type JobStatus struct {
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	State       State     `json:"state"`
	LastOutcome State     `json:"last_outcome,omitempty"`
	NextFire    time.Time `json:"next_fire"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastRunDay  string    `json:"last_run_day,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastRunID   string    `json:"last_run_id,omitempty"`
}

type jobEntry struct {
	job         Job
	schedule    Schedule
	state       State
	lastOutcome State
	nextFire    time.Time
	lastRun     time.Time
	lastRunDay  string
	lastError   string
	lastRunID   string
}

// Scheduler owns the timer loop and job state.
type Scheduler struct {
	clk *clock.Clock
	log zerolog.Logger

	mu      sync.Mutex
	entries map[string]*jobEntry
	running bool

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler anchored to the given clock's timezone.
func New(clk *clock.Clock, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		clk:     clk,
		log:     log.With().Str("component", "scheduler").Logger(),
		entries: make(map[string]*jobEntry),
		wake:    make(chan struct{}, 1),
	}
}

// Register adds a job with its daily anchor. Registering after Start is
// allowed; the loop re-plans on the next wake.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("job %q already registered", job.Name())
	}

	s.entries[job.Name()] = &jobEntry{
		job:      job,
		schedule: schedule,
		state:    StateIdle,
		nextFire: schedule.NextAfter(s.clk.Now()),
	}

	s.log.Info().
		Str("job", job.Name()).
		Str("schedule", schedule.String()).
		Bool("once_per_day", job.OncePerDay()).
		Msg("Job registered")

	s.poke()
	return nil
}

// Start launches the timer loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Info().Msg("Scheduler started")
}

// Stop cancels running jobs and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.log.Info().Msg("Scheduler stopped")
}

// Trigger runs a job now. force bypasses the once-per-day check, which
// is the difference between "run it if it has not happened yet" and
// "run it again regardless". The caller's context bounds the run.
func (s *Scheduler) Trigger(ctx context.Context, name string, force bool) error {
	s.mu.Lock()
	entry, ok := s.entries[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown job %q", name)
	}
	if entry.state == StateRunning {
		s.mu.Unlock()
		return fmt.Errorf("job %q is already running", name)
	}
	launched := s.dispatchLocked(ctx, entry, force)
	s.mu.Unlock()

	if !launched {
		return fmt.Errorf("job %q already ran for %s; use force to re-run", name, s.clk.Today())
	}
	return nil
}

// Status returns a snapshot of every job, sorted by name.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.entries))
	for _, e := range s.entries {
		statuses = append(statuses, JobStatus{
			Name:        e.job.Name(),
			Schedule:    e.schedule.String(),
			State:       e.state,
			LastOutcome: e.lastOutcome,
			NextFire:    e.nextFire,
			LastRun:     e.lastRun,
			LastRunDay:  e.lastRunDay,
			LastError:   e.lastError,
			LastRunID:   e.lastRunID,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		now := s.clk.Now()
		var earliest time.Time
		for _, e := range s.entries {
			if !e.nextFire.After(now) {
				s.dispatchLocked(ctx, e, false)
			}
			if earliest.IsZero() || e.nextFire.Before(earliest) {
				earliest = e.nextFire
			}
		}
		s.mu.Unlock()

		sleep := time.Minute
		if !earliest.IsZero() {
			if d := earliest.Sub(s.clk.Now()); d < sleep {
				sleep = d
			}
		}
		if sleep < time.Second {
			sleep = time.Second
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// dispatchLocked advances the fire time and, unless the per-day check
// skips it, launches the job. Caller holds s.mu. Reports whether the
// job was launched.
func (s *Scheduler) dispatchLocked(ctx context.Context, e *jobEntry, force bool) bool {
	now := s.clk.Now()
	e.nextFire = e.schedule.NextAfter(now)

	if e.state == StateRunning {
		return false
	}

	today := s.clk.Today()
	if !force && e.job.OncePerDay() && e.lastRunDay == today {
		s.log.Debug().
			Str("job", e.job.Name()).
			Str("day", today).
			Msg("Job already completed for today, skipping")
		return false
	}

	runID := uuid.New().String()
	e.state = StateRunning
	e.lastRunID = runID
	e.lastRun = now

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		log := s.log.With().Str("job", e.job.Name()).Str("run_id", runID).Logger()
		log.Info().Bool("forced", force).Msg("Job starting")

		start := time.Now()
		err := e.job.Run(ctx)
		elapsed := time.Since(start)

		s.mu.Lock()
		defer s.mu.Unlock()

		e.state = StateIdle
		if err != nil {
			// Failed jobs keep their old lastRunDay so the next
			// scheduled occurrence retries.
			e.lastOutcome = StateFailed
			e.lastError = err.Error()
			log.Error().Err(err).Dur("elapsed", elapsed).Msg("Job failed")
			return
		}

		e.lastOutcome = StateCompleted
		e.lastError = ""
		e.lastRunDay = today
		log.Info().Dur("elapsed", elapsed).Msg("Job completed")
	}()

	return true
}
