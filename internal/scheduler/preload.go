package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/modules/matchup"
)

// PopularTeams are the most-viewed team IDs, warmed ahead of traffic.
var PopularTeams = []int{
	147, // New York Yankees
	121, // New York Mets
	119, // Los Angeles Dodgers
	117, // Houston Astros
	111, // Boston Red Sox
	108, // Los Angeles Angels
	145, // Chicago White Sox
	112, // Chicago Cubs
	158, // Milwaukee Brewers
	143, // Philadelphia Phillies
}

// PreloadJob warms the matchup cache for the popular teams.
type PreloadJob struct {
	matchups *matchup.Service
	teams    []int
	delay    time.Duration
	log      zerolog.Logger
}

// NewPreloadJob creates the cache preload job. delay spaces out the
// provider calls to stay under upstream rate limits.
func NewPreloadJob(matchups *matchup.Service, teams []int, delay time.Duration, log zerolog.Logger) *PreloadJob {
	return &PreloadJob{
		matchups: matchups,
		teams:    teams,
		delay:    delay,
		log:      log.With().Str("job", "preload").Logger(),
	}
}

// Name implements Job.
func (j *PreloadJob) Name() string { return "preload" }

// OncePerDay implements Job.
func (j *PreloadJob) OncePerDay() bool { return true }

// Run warms each team in turn. Individual failures are logged and the
// batch keeps going; the inter-team delay is not cancellable mid-sleep
// but the loop checks the context between teams.
func (j *PreloadJob) Run(ctx context.Context) error {
	j.log.Info().Int("teams", len(j.teams)).Msg("Starting matchup preload")

	warmed := 0
	for i, teamID := range j.teams {
		if err := ctx.Err(); err != nil {
			return err
		}

		if j.matchups.Warmed(teamID) {
			j.log.Debug().Int("team", teamID).Msg("Already cached")
			continue
		}

		if _, err := j.matchups.HittersForTeam(ctx, teamID); err != nil {
			j.log.Warn().Err(err).Int("team", teamID).Msg("Preload failed for team, continuing")
		} else {
			warmed++
		}

		if i < len(j.teams)-1 {
			time.Sleep(j.delay)
		}
	}

	j.log.Info().Int("warmed", warmed).Msg("Matchup preload completed")
	return nil
}
