package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clock"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
)

// CleanupJob deletes daily rows older than the retention window.
type CleanupJob struct {
	clk           *clock.Clock
	store         *daily.Store
	retentionDays int
	log           zerolog.Logger
}

// NewCleanupJob creates the retention sweep job.
func NewCleanupJob(clk *clock.Clock, store *daily.Store, retentionDays int, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		clk:           clk,
		store:         store,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "cleanup").Logger(),
	}
}

// Name implements Job.
func (j *CleanupJob) Name() string { return "cleanup" }

// OncePerDay implements Job.
func (j *CleanupJob) OncePerDay() bool { return true }

// Run purges rows strictly older than today minus the retention window.
func (j *CleanupJob) Run(ctx context.Context) error {
	cutoff, err := j.CutoffDay()
	if err != nil {
		return err
	}

	deleted, err := j.store.PurgeOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	j.log.Info().Str("cutoff", cutoff).Int("deleted", deleted).Msg("Retention sweep completed")
	return nil
}

// CutoffDay computes the oldest operating day to retain.
func (j *CleanupJob) CutoffDay() (string, error) {
	today, err := time.Parse(clock.DayFormat, j.clk.Today())
	if err != nil {
		return "", fmt.Errorf("cleanup: bad operating day: %w", err)
	}
	return today.AddDate(0, 0, -j.retentionDays).Format(clock.DayFormat), nil
}
