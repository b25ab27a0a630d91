package report

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clients/odds"
	"github.com/djstrauss/dingertuesday/internal/modules/analysis"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
)

// OpponentLineup supplies the market color appended to each report
// section: how many hitters on the pitcher's opposing roster carry a
// HR prop today, and whom the books like most. Every failure degrades
// to an empty string; the report never blocks on this.
type OpponentLineup struct {
	lookups *daily.Lookups
	odds    *odds.Client
	log     zerolog.Logger
}

// NewOpponentLineup creates the production opponent-context provider.
func NewOpponentLineup(lookups *daily.Lookups, oddsClient *odds.Client, log zerolog.Logger) *OpponentLineup {
	return &OpponentLineup{
		lookups: lookups,
		odds:    oddsClient,
		log:     log.With().Str("component", "opponent_lineup").Logger(),
	}
}

// OpponentContext implements ContextProvider.
func (o *OpponentLineup) OpponentContext(ctx context.Context, score analysis.Score) string {
	teamID := score.Pitcher.OpponentID
	if teamID == 0 {
		return ""
	}

	roster, err := o.lookups.Roster(ctx, teamID)
	if err != nil {
		o.log.Warn().Err(err).Int("team", teamID).Msg("Roster fetch failed, section carries no market context")
		return ""
	}

	snapshot, err := o.odds.Fetch(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("Odds fetch failed, section carries no market context")
		return ""
	}

	// Lower American odds mean a stronger favorite.
	priced := 0
	var bestName string
	var best odds.PlayerOdds
	for _, player := range roster {
		market, ok := snapshot.Players[player.FullName]
		if !ok {
			continue
		}
		priced++
		if bestName == "" || market.RawOdds < best.RawOdds {
			bestName = player.FullName
			best = market
		}
	}

	if priced == 0 {
		return ""
	}
	if priced == 1 {
		return fmt.Sprintf("The books price %s to go deep at %s.", bestName, best.Odds)
	}
	return fmt.Sprintf("The books price %d %s hitters to go deep today, led by %s at %s.",
		priced, score.Pitcher.Opponent, bestName, best.Odds)
}
