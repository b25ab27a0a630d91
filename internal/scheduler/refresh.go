package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clock"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
)

// RefreshJob fetches every data class for the current operating day and
// writes the results through both cache tiers.
type RefreshJob struct {
	clk      *clock.Clock
	resolver *daily.Resolver
	fetchers map[daily.DataClass]daily.Fetcher
	log      zerolog.Logger
}

// NewRefreshJob creates the primary refresh job.
func NewRefreshJob(clk *clock.Clock, resolver *daily.Resolver, fetchers map[daily.DataClass]daily.Fetcher, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		clk:      clk,
		resolver: resolver,
		fetchers: fetchers,
		log:      log.With().Str("job", "refresh").Logger(),
	}
}

// Name implements Job.
func (j *RefreshJob) Name() string { return "refresh" }

// OncePerDay implements Job.
func (j *RefreshJob) OncePerDay() bool { return true }

// Run fetches each class independently: one provider failure must not
// block the other classes. The job fails (and so retries at the next
// occurrence) if any class failed.
func (j *RefreshJob) Run(ctx context.Context) error {
	day := j.clk.Today()
	j.log.Info().Str("day", day).Msg("Starting daily refresh")

	var errs []error
	for _, class := range daily.AllClasses {
		fetcher, ok := j.fetchers[class]
		if !ok {
			errs = append(errs, fmt.Errorf("no fetcher for class %q", class))
			continue
		}

		payload, err := fetcher.Fetch(ctx, day)
		if err != nil {
			j.log.Error().Err(err).Str("class", string(class)).Msg("Class refresh failed")
			errs = append(errs, fmt.Errorf("refresh %s: %w", class, err))
			continue
		}

		j.resolver.Warm(class, day, payload)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	j.log.Info().Str("day", day).Msg("Daily refresh completed")
	return nil
}
