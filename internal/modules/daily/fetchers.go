package daily

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clients/odds"
	"github.com/djstrauss/dingertuesday/internal/clients/statsapi"
)

// Fetcher produces the payload for one data class and operating day.
type Fetcher interface {
	Fetch(ctx context.Context, day string) (interface{}, error)
}

// Game statuses for which probable pitchers are meaningful.
var probablePitcherStatuses = map[string]bool{
	"Scheduled": true,
	"Pre-Game":  true,
	"Preview":   true,
	"Live":      true,
}

// PitcherFetcher builds the probable-pitchers dataset.
type PitcherFetcher struct {
	client  *statsapi.Client
	lookups *Lookups
	log     zerolog.Logger
}

// NewPitcherFetcher creates a pitcher fetcher.
func NewPitcherFetcher(client *statsapi.Client, lookups *Lookups, log zerolog.Logger) *PitcherFetcher {
	return &PitcherFetcher{
		client:  client,
		lookups: lookups,
		log:     log.With().Str("fetcher", "pitchers").Logger(),
	}
}

// Fetch collects every probable pitcher for the day with season BF/HR
// numbers. A failed sub-lookup marks the row with SentinelStat and the
// batch continues; only a schedule failure aborts the whole fetch.
func (f *PitcherFetcher) Fetch(ctx context.Context, day string) (interface{}, error) {
	games, err := f.client.Schedule(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("pitcher fetch: %w", err)
	}

	payload := &PitcherPayload{Pitchers: []Pitcher{}}
	for _, game := range games {
		if !probablePitcherStatuses[game.Status] {
			continue
		}

		type slot struct {
			name, team, opponent string
			opponentID           int
		}
		var slots []slot
		if game.HomeProbablePitcher != "" {
			slots = append(slots, slot{game.HomeProbablePitcher, game.HomeName, game.AwayName, game.AwayID})
		}
		if game.AwayProbablePitcher != "" {
			slots = append(slots, slot{game.AwayProbablePitcher, game.AwayName, game.HomeName, game.HomeID})
		}

		for _, sl := range slots {
			payload.Pitchers = append(payload.Pitchers, f.buildRow(ctx, sl.name, sl.team, sl.opponent, sl.opponentID))
		}
	}

	payload.TotalGames = len(payload.Pitchers)
	f.log.Info().Str("day", day).Int("pitchers", payload.TotalGames).Msg("Fetched pitcher data")
	return payload, nil
}

func (f *PitcherFetcher) buildRow(ctx context.Context, name, team, opponent string, opponentID int) Pitcher {
	row := Pitcher{
		Name:       name,
		Team:       team,
		Opponent:   opponent,
		OpponentID: opponentID,
	}

	playerID, err := f.lookups.PlayerID(ctx, name)
	if err != nil {
		f.log.Warn().Err(err).Str("pitcher", name).Msg("Player ID lookup failed")
		row.BattersFaced = SentinelStat
		row.HomeRunsAllowed = SentinelStat
		row.StatError = ReasonLookupError
		return row
	}

	stats, err := f.lookups.PlayerStats(ctx, playerID, "pitching", "season")
	if err != nil {
		f.log.Warn().Err(err).Str("pitcher", name).Msg("Stat fetch failed")
		row.BattersFaced = SentinelStat
		row.HomeRunsAllowed = SentinelStat
		row.StatError = ReasonFetchError
		return row
	}

	bf, okBF := stats.Int("battersFaced")
	hr, okHR := stats.Int("homeRuns")
	if !okBF || !okHR {
		row.BattersFaced = SentinelStat
		row.HomeRunsAllowed = SentinelStat
		row.StatError = ReasonUnavailable
		return row
	}

	row.BattersFaced = bf
	row.HomeRunsAllowed = hr
	return row
}

// HitterFetcher builds the HR-leaders dataset with matchup and odds context.
type HitterFetcher struct {
	client  *statsapi.Client
	odds    *odds.Client
	lookups *Lookups
	limit   int
	log     zerolog.Logger
}

// NewHitterFetcher creates a hitter fetcher.
func NewHitterFetcher(client *statsapi.Client, oddsClient *odds.Client, lookups *Lookups, log zerolog.Logger) *HitterFetcher {
	return &HitterFetcher{
		client:  client,
		odds:    oddsClient,
		lookups: lookups,
		limit:   50,
		log:     log.With().Str("fetcher", "hitters").Logger(),
	}
}

// Fetch builds the leaders list. Odds are best-effort: a failed odds
// fetch serves the class without market data instead of failing it, so
// rows with a game read GameNotCovered and the rest OddsUnknown.
func (f *HitterFetcher) Fetch(ctx context.Context, day string) (interface{}, error) {
	snapshot, err := f.odds.Fetch(ctx)
	if err != nil {
		f.log.Warn().Err(err).Msg("Odds fetch failed, continuing without market data")
		snapshot = &odds.Snapshot{
			Players:      map[string]odds.PlayerOdds{},
			CoveredTeams: map[string]bool{},
		}
	}

	leaders, err := f.client.HomeRunLeaders(ctx, f.lookups.Season(), f.limit)
	if err != nil {
		return nil, fmt.Errorf("hitter fetch: %w", err)
	}

	opponents := f.todaysOpponents(ctx, day)

	payload := &HitterPayload{Hitters: []Hitter{}}
	for _, leader := range leaders {
		row := Hitter{
			Name:     leader.Name,
			Team:     leader.TeamName,
			HomeRuns: leader.Value,
		}

		stats, err := f.lookups.PlayerStats(ctx, leader.PersonID, "hitting", "season")
		if err != nil {
			f.log.Warn().Err(err).Str("hitter", leader.Name).Msg("Stat fetch failed")
			row.AtBats = SentinelStat
		} else if ab, ok := stats.Int("atBats"); ok {
			row.AtBats = ab
		} else {
			row.AtBats = SentinelStat
		}

		opponent, hasGame := opponents[leader.Name]
		if !hasGame {
			opponent = NoGameToday
		}
		row.OpponentToday = opponent

		if market, ok := snapshot.Players[leader.Name]; ok {
			row.TodaysOdds = market.Odds
			row.RawOdds = market.RawOdds
			row.SportsbookCount = market.SportsbookCount
		} else if hasGame && !snapshot.Covered(leader.TeamName) {
			// The player has a matchup today but the books do not
			// carry the game. Distinct from having no game at all.
			row.TodaysOdds = GameNotCovered
		} else {
			row.TodaysOdds = OddsUnknown
		}

		payload.Hitters = append(payload.Hitters, row)
	}

	sort.SliceStable(payload.Hitters, func(i, j int) bool {
		return payload.Hitters[i].HomeRuns > payload.Hitters[j].HomeRuns
	})
	// The count reports everything collected; the list itself is capped.
	payload.TotalHitters = len(payload.Hitters)
	if len(payload.Hitters) > f.limit {
		payload.Hitters = payload.Hitters[:f.limit]
	}

	teams := make([]string, 0, len(snapshot.CoveredTeams))
	for team := range snapshot.CoveredTeams {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	payload.OddsCoverage = OddsCoverage{
		GamesWithOdds: snapshot.GameCount,
		TeamsCovered:  teams,
	}

	f.log.Info().Str("day", day).Int("hitters", payload.TotalHitters).Msg("Fetched hitter data")
	return payload, nil
}

// todaysOpponents maps every rostered player in today's games to the
// opposing team. Roster failures skip the game and keep going.
func (f *HitterFetcher) todaysOpponents(ctx context.Context, day string) map[string]string {
	opponents := make(map[string]string)

	games, err := f.client.Schedule(ctx, day)
	if err != nil {
		f.log.Warn().Err(err).Str("day", day).Msg("Schedule fetch failed, no matchup context")
		return opponents
	}

	for _, game := range games {
		if game.HomeID == 0 || game.AwayID == 0 {
			continue
		}

		homeRoster, err := f.lookups.Roster(ctx, game.HomeID)
		if err != nil {
			f.log.Warn().Err(err).Int("team", game.HomeID).Msg("Roster fetch failed")
			continue
		}
		awayRoster, err := f.lookups.Roster(ctx, game.AwayID)
		if err != nil {
			f.log.Warn().Err(err).Int("team", game.AwayID).Msg("Roster fetch failed")
			continue
		}

		for _, p := range homeRoster {
			opponents[p.FullName] = game.AwayName
		}
		for _, p := range awayRoster {
			opponents[p.FullName] = game.HomeName
		}
	}

	return opponents
}

// ScheduleFetcher builds the raw schedule dataset.
type ScheduleFetcher struct {
	client *statsapi.Client
	log    zerolog.Logger
}

// NewScheduleFetcher creates a schedule fetcher.
func NewScheduleFetcher(client *statsapi.Client, log zerolog.Logger) *ScheduleFetcher {
	return &ScheduleFetcher{
		client: client,
		log:    log.With().Str("fetcher", "schedule").Logger(),
	}
}

// Fetch returns the day's normalized schedule.
func (f *ScheduleFetcher) Fetch(ctx context.Context, day string) (interface{}, error) {
	games, err := f.client.Schedule(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("schedule fetch: %w", err)
	}
	if games == nil {
		games = []statsapi.Game{}
	}
	return &SchedulePayload{Games: games, TotalGames: len(games)}, nil
}
