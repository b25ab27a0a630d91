package daily

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clients/statsapi"
)

// LookupTTLs configures the per-kind cache lifetimes for sub-resources.
type LookupTTLs struct {
	Stats  time.Duration // player stat lines
	Roster time.Duration // rosters and team info
	Lookup time.Duration // name -> player ID resolution
}

// Lookups wraps the Stats API client with TTL caching for the
// sub-resources that many callers hit repeatedly: player IDs, stat
// lines, rosters and team identities.
type Lookups struct {
	client *statsapi.Client
	cache  *cache.Cache
	season int
	ttls   LookupTTLs
	log    zerolog.Logger
}

// NewLookups creates a cached lookup layer.
func NewLookups(client *statsapi.Client, c *cache.Cache, season int, ttls LookupTTLs, log zerolog.Logger) *Lookups {
	return &Lookups{
		client: client,
		cache:  c,
		season: season,
		ttls:   ttls,
		log:    log.With().Str("component", "lookups").Logger(),
	}
}

// Season returns the season the lookups are scoped to.
func (l *Lookups) Season() int {
	return l.season
}

// PlayerID resolves a player name to an ID, cached for a long period
// since identities effectively never change mid-season.
func (l *Lookups) PlayerID(ctx context.Context, name string) (int, error) {
	key := "player_lookup_" + strings.ReplaceAll(name, " ", "_")
	if v, ok := l.cache.Get(key); ok {
		return v.(int), nil
	}

	player, err := l.client.LookupPlayer(ctx, name)
	if err != nil {
		return 0, err
	}

	l.cache.Put(key, player.ID, l.ttls.Lookup)
	return player.ID, nil
}

// PlayerStats returns a cached season stat line.
func (l *Lookups) PlayerStats(ctx context.Context, playerID int, group, statType string) (statsapi.Stats, error) {
	key := fmt.Sprintf("%d_%s_%s", playerID, group, statType)
	if v, ok := l.cache.Get(key); ok {
		return v.(statsapi.Stats), nil
	}

	stats, err := l.client.PlayerStats(ctx, playerID, group, statType, l.season)
	if err != nil {
		return nil, err
	}

	l.cache.Put(key, stats, l.ttls.Stats)
	return stats, nil
}

// Roster returns a cached team roster.
func (l *Lookups) Roster(ctx context.Context, teamID int) ([]statsapi.Player, error) {
	key := fmt.Sprintf("roster_%d_%d", teamID, l.season)
	if v, ok := l.cache.Get(key); ok {
		return v.([]statsapi.Player), nil
	}

	roster, err := l.client.Roster(ctx, teamID, l.season)
	if err != nil {
		return nil, err
	}

	l.cache.Put(key, roster, l.ttls.Roster)
	return roster, nil
}

// TeamInfo returns a cached team identity.
func (l *Lookups) TeamInfo(ctx context.Context, teamID int) (*statsapi.Team, error) {
	key := fmt.Sprintf("team_info_%d", teamID)
	if v, ok := l.cache.Get(key); ok {
		return v.(*statsapi.Team), nil
	}

	team, err := l.client.LookupTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	l.cache.Put(key, team, l.ttls.Roster)
	return team, nil
}
