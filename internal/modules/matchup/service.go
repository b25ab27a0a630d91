// Package matchup builds the per-team hitter view: every rostered
// hitter with meaningful at-bats, annotated with today's HR odds.
package matchup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clients/odds"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
)

// Only hitters with more than this many at-bats are worth showing.
const minAtBats = 10

// HitterRow is one roster hitter with power numbers and market context.
type HitterRow struct {
	Name            string  `json:"name"`
	AtBats          int     `json:"at_bats"`
	HomeRuns        int     `json:"home_runs"`
	ABPerHR         float64 `json:"ab_per_hr,omitempty"`
	TodaysOdds      string  `json:"todays_odds"`
	SportsbookCount int     `json:"sportsbook_count,omitempty"`
}

// TeamMatchup is the full response for one team.
type TeamMatchup struct {
	TeamID   int         `json:"team_id"`
	TeamName string      `json:"team_name"`
	Hitters  []HitterRow `json:"matchup_data"`
}

// Service resolves team matchup views with caching at every layer.
type Service struct {
	lookups   *daily.Lookups
	odds      *odds.Client
	cache     *cache.Cache
	resultTTL time.Duration
	log       zerolog.Logger
}

// NewService creates a matchup service.
func NewService(lookups *daily.Lookups, oddsClient *odds.Client, c *cache.Cache, resultTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		lookups:   lookups,
		odds:      oddsClient,
		cache:     c,
		resultTTL: resultTTL,
		log:       log.With().Str("component", "matchup").Logger(),
	}
}

// CacheKey returns the cache key for a team's matchup view.
func (s *Service) CacheKey(teamID int) string {
	return fmt.Sprintf("matchup_%d_%d", teamID, s.lookups.Season())
}

// HittersForTeam returns the matchup view for a team, from cache when
// fresh. A failed stat lookup skips the player; the rest of the roster
// still resolves.
func (s *Service) HittersForTeam(ctx context.Context, teamID int) (*TeamMatchup, error) {
	key := s.CacheKey(teamID)
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug().Int("team", teamID).Msg("Serving matchup from cache")
		return v.(*TeamMatchup), nil
	}

	team, err := s.lookups.TeamInfo(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("matchup for team %d: %w", teamID, err)
	}

	roster, err := s.lookups.Roster(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("matchup for team %d: %w", teamID, err)
	}

	// Odds are best-effort color, not a hard dependency.
	snapshot, err := s.odds.Fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Odds fetch failed, matchup served without market data")
		snapshot = &odds.Snapshot{Players: map[string]odds.PlayerOdds{}, CoveredTeams: map[string]bool{}}
	}

	result := &TeamMatchup{TeamID: teamID, TeamName: team.Name, Hitters: []HitterRow{}}
	for _, player := range roster {
		stats, err := s.lookups.PlayerStats(ctx, player.ID, "hitting", "season")
		if err != nil {
			s.log.Warn().Err(err).Str("player", player.FullName).Msg("Stat fetch failed, skipping")
			continue
		}

		atBats, ok := stats.Int("atBats")
		if !ok || atBats <= minAtBats {
			continue
		}
		homeRuns, _ := stats.Int("homeRuns")

		row := HitterRow{
			Name:     player.FullName,
			AtBats:   atBats,
			HomeRuns: homeRuns,
		}
		if homeRuns > 0 {
			row.ABPerHR = float64(atBats) / float64(homeRuns)
		}

		if market, ok := snapshot.Players[player.FullName]; ok {
			row.TodaysOdds = market.Odds
			row.SportsbookCount = market.SportsbookCount
		} else {
			row.TodaysOdds = daily.OddsUnknown
		}

		result.Hitters = append(result.Hitters, row)
	}

	sort.SliceStable(result.Hitters, func(i, j int) bool {
		return result.Hitters[i].HomeRuns > result.Hitters[j].HomeRuns
	})

	s.cache.Put(key, result, s.resultTTL)
	s.log.Info().Int("team", teamID).Int("hitters", len(result.Hitters)).Msg("Built matchup view")
	return result, nil
}

// Warmed reports whether a team's matchup view is already cached.
func (s *Service) Warmed(teamID int) bool {
	_, ok := s.cache.Get(s.CacheKey(teamID))
	return ok
}
