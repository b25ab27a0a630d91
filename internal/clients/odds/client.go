// Package odds fetches the daily home-run prop odds snapshot.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clients/apierr"
)

// PlayerOdds is the consensus "to hit a HR" market for one player.
type PlayerOdds struct {
	Odds            string `json:"odds"`     // display form, "+250"
	RawOdds         int    `json:"raw_odds"` // American odds as published
	SportsbookCount int    `json:"sportsbook_count"`
}

// Snapshot is one fetch of the odds feed.
type Snapshot struct {
	// Players maps player name to the consensus market.
	Players map[string]PlayerOdds
	// CoveredTeams holds the team names appearing in any covered game.
	// A player whose team is absent here has a game the books do not
	// carry, which is a different state from having no game at all.
	CoveredTeams map[string]bool
	// GameCount is the number of games with market coverage.
	GameCount int
}

// Covered reports whether the given team appears in a covered game.
func (s *Snapshot) Covered(team string) bool {
	return s.CoveredTeams[team]
}

// Client fetches the odds feed
type Client struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new odds client
func NewClient(url string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "odds").Logger(),
	}
}

type feedResponse struct {
	Games []struct {
		AwayTeam string `json:"away_team"`
		HomeTeam string `json:"home_team"`
		Players  []struct {
			PlayerName string  `json:"player_name"`
			Line       float64 `json:"line"`
			OverOdds   struct {
				Consensus int `json:"consensus"`
			} `json:"over_odds"`
			SportsbookCount int `json:"sportsbook_count"`
		} `json:"players"`
	} `json:"games"`
}

// Fetch retrieves today's snapshot.
// Only the 0.5-line ("to hit a HR") props with at least one book are kept.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := apierr.FromStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("odds feed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", apierr.ErrTransient, err)
	}

	var raw feedResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrMalformed, err)
	}

	snapshot := &Snapshot{
		Players:      make(map[string]PlayerOdds),
		CoveredTeams: make(map[string]bool),
		GameCount:    len(raw.Games),
	}

	for _, game := range raw.Games {
		snapshot.CoveredTeams[game.AwayTeam] = true
		snapshot.CoveredTeams[game.HomeTeam] = true

		for _, p := range game.Players {
			if p.Line != 0.5 || p.SportsbookCount == 0 || p.OverOdds.Consensus == 0 {
				continue
			}
			snapshot.Players[p.PlayerName] = PlayerOdds{
				Odds:            FormatAmerican(p.OverOdds.Consensus),
				RawOdds:         p.OverOdds.Consensus,
				SportsbookCount: p.SportsbookCount,
			}
		}
	}

	c.log.Info().
		Int("games", snapshot.GameCount).
		Int("players", len(snapshot.Players)).
		Msg("Fetched home run odds")

	return snapshot, nil
}

// FormatAmerican renders American odds with an explicit sign on the plus side.
func FormatAmerican(odds int) string {
	if odds > 0 {
		return fmt.Sprintf("+%d", odds)
	}
	return fmt.Sprintf("%d", odds)
}
