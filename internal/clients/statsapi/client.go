// Package statsapi is a client for the MLB Stats API.
//
// Responses are loosely typed JSON; each method normalizes the slice of
// the payload it needs and classifies failures per the apierr taxonomy.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/clients/apierr"
)

// Client is an MLB Stats API client
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Stats API client
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "statsapi").Logger(),
	}
}

// getJSON fetches a provider URL and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := apierr.FromStatus(resp.StatusCode); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", apierr.ErrTransient, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrMalformed, err)
	}
	return nil
}

type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePK   int    `json:"gamePk"`
			GameDate string `json:"gameDate"`
			Status   struct {
				DetailedState string `json:"detailedState"`
			} `json:"status"`
			Teams struct {
				Home scheduleTeamSide `json:"home"`
				Away scheduleTeamSide `json:"away"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

type scheduleTeamSide struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	ProbablePitcher struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"probablePitcher"`
}

// Schedule returns the normalized game list for a date ("YYYY-MM-DD").
// A date with no games returns an empty slice, not an error.
func (c *Client) Schedule(ctx context.Context, date string) ([]Game, error) {
	q := url.Values{}
	q.Set("sportId", "1")
	q.Set("date", date)
	q.Set("hydrate", "probablePitcher")

	var raw scheduleResponse
	if err := c.getJSON(ctx, "/schedule", q, &raw); err != nil {
		return nil, fmt.Errorf("schedule for %s: %w", date, err)
	}

	var games []Game
	for _, d := range raw.Dates {
		for _, g := range d.Games {
			games = append(games, Game{
				GamePK:              g.GamePK,
				GameDate:            g.GameDate,
				Status:              g.Status.DetailedState,
				HomeID:              g.Teams.Home.Team.ID,
				HomeName:            g.Teams.Home.Team.Name,
				AwayID:              g.Teams.Away.Team.ID,
				AwayName:            g.Teams.Away.Team.Name,
				HomeProbablePitcher: g.Teams.Home.ProbablePitcher.FullName,
				AwayProbablePitcher: g.Teams.Away.ProbablePitcher.FullName,
			})
		}
	}

	c.log.Debug().Str("date", date).Int("games", len(games)).Msg("Fetched schedule")
	return games, nil
}

// LookupPlayer resolves a player name to an identity.
// Ambiguous names resolve to the first match, same as the original site.
func (c *Client) LookupPlayer(ctx context.Context, name string) (*Player, error) {
	q := url.Values{}
	q.Set("names", name)

	var raw struct {
		People []struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"people"`
	}
	if err := c.getJSON(ctx, "/people/search", q, &raw); err != nil {
		return nil, fmt.Errorf("lookup player %q: %w", name, err)
	}
	if len(raw.People) == 0 {
		return nil, fmt.Errorf("lookup player %q: %w", name, apierr.ErrNotFound)
	}

	return &Player{ID: raw.People[0].ID, FullName: raw.People[0].FullName}, nil
}

// PlayerStats returns the season stat map for a player.
// group is "pitching" or "hitting"; statType is "season" or "seasonAdvanced".
func (c *Client) PlayerStats(ctx context.Context, playerID int, group, statType string, season int) (Stats, error) {
	q := url.Values{}
	q.Set("stats", statType)
	q.Set("group", group)
	q.Set("season", fmt.Sprintf("%d", season))

	var raw struct {
		Stats []struct {
			Splits []struct {
				Stat map[string]interface{} `json:"stat"`
			} `json:"splits"`
		} `json:"stats"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/people/%d/stats", playerID), q, &raw); err != nil {
		return nil, fmt.Errorf("stats for player %d: %w", playerID, err)
	}

	if len(raw.Stats) == 0 || len(raw.Stats[0].Splits) == 0 {
		return nil, fmt.Errorf("stats for player %d: %w", playerID, apierr.ErrNotFound)
	}
	return Stats(raw.Stats[0].Splits[0].Stat), nil
}

// Roster returns the active roster for a team.
func (c *Client) Roster(ctx context.Context, teamID, season int) ([]Player, error) {
	q := url.Values{}
	q.Set("season", fmt.Sprintf("%d", season))

	var raw struct {
		Roster []struct {
			Person struct {
				ID       int    `json:"id"`
				FullName string `json:"fullName"`
			} `json:"person"`
			Position struct {
				Abbreviation string `json:"abbreviation"`
			} `json:"position"`
		} `json:"roster"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/teams/%d/roster", teamID), q, &raw); err != nil {
		return nil, fmt.Errorf("roster for team %d: %w", teamID, err)
	}

	players := make([]Player, 0, len(raw.Roster))
	for _, r := range raw.Roster {
		players = append(players, Player{
			ID:       r.Person.ID,
			FullName: r.Person.FullName,
			Position: r.Position.Abbreviation,
		})
	}
	return players, nil
}

// LookupTeam resolves a team ID to its identity.
func (c *Client) LookupTeam(ctx context.Context, teamID int) (*Team, error) {
	var raw struct {
		Teams []struct {
			ID           int    `json:"id"`
			Name         string `json:"name"`
			Abbreviation string `json:"abbreviation"`
		} `json:"teams"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/teams/%d", teamID), nil, &raw); err != nil {
		return nil, fmt.Errorf("lookup team %d: %w", teamID, err)
	}
	if len(raw.Teams) == 0 {
		return nil, fmt.Errorf("lookup team %d: %w", teamID, apierr.ErrNotFound)
	}

	t := raw.Teams[0]
	return &Team{ID: t.ID, Name: t.Name, Abbreviation: t.Abbreviation}, nil
}

// HomeRunLeaders returns the top home-run hitters for the season.
func (c *Client) HomeRunLeaders(ctx context.Context, season, limit int) ([]Leader, error) {
	q := url.Values{}
	q.Set("leaderCategories", "homeRuns")
	q.Set("statGroup", "hitting")
	q.Set("season", fmt.Sprintf("%d", season))
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("sportId", "1")

	var raw struct {
		LeagueLeaders []struct {
			Leaders []struct {
				Rank   int    `json:"rank"`
				Value  string `json:"value"`
				Person struct {
					ID       int    `json:"id"`
					FullName string `json:"fullName"`
				} `json:"person"`
				Team struct {
					Name string `json:"name"`
				} `json:"team"`
			} `json:"leaders"`
		} `json:"leagueLeaders"`
	}
	if err := c.getJSON(ctx, "/stats/leaders", q, &raw); err != nil {
		return nil, fmt.Errorf("home run leaders: %w", err)
	}
	if len(raw.LeagueLeaders) == 0 {
		return nil, fmt.Errorf("home run leaders: %w", apierr.ErrNotFound)
	}

	var leaders []Leader
	for _, l := range raw.LeagueLeaders[0].Leaders {
		value, err := strconv.Atoi(l.Value)
		if err != nil {
			// The leaders endpoint reports values as strings; skip
			// rows that are not plain integers.
			continue
		}
		leaders = append(leaders, Leader{
			Rank:     l.Rank,
			PersonID: l.Person.ID,
			Name:     l.Person.FullName,
			TeamName: l.Team.Name,
			Value:    value,
		})
	}
	return leaders, nil
}
