// Package daily owns the day-keyed data pipeline: the data classes, the
// durable daily store, the per-class fetchers and the tiered resolver.
package daily

import (
	"time"

	"github.com/djstrauss/dingertuesday/internal/clients/statsapi"
)

// DataClass identifies one of the daily datasets.
type DataClass string

const (
	ClassPitchers DataClass = "pitchers"
	ClassHitters  DataClass = "hitters"
	ClassSchedule DataClass = "schedule"
)

// AllClasses lists every data class, in refresh order.
var AllClasses = []DataClass{ClassPitchers, ClassHitters, ClassSchedule}

// Valid reports whether the class is a known one.
func (d DataClass) Valid() bool {
	switch d {
	case ClassPitchers, ClassHitters, ClassSchedule:
		return true
	}
	return false
}

// SentinelStat marks a stat whose lookup failed. Rows carrying it are
// excluded from numeric aggregation but still shown to the reader.
const SentinelStat = -1

// Sentinel reasons carried alongside SentinelStat values.
const (
	ReasonLookupError = "ID Lookup Error"
	ReasonFetchError  = "Fetch Error"
	ReasonUnavailable = "N/A"
)

// Hitter matchup/odds placeholders. "No game today" and "Game not
// covered" are distinct states: the first means no matchup exists, the
// second means the matchup exists but the books do not carry it.
const (
	NoGameToday    = "No game today"
	GameNotCovered = "Game not covered"
	OddsUnknown    = "N/A"
)

// Pitcher is one probable starter for the day.
type Pitcher struct {
	Name            string `json:"name"`
	Team            string `json:"team"`
	Opponent        string `json:"opponent"`
	OpponentID      int    `json:"opponent_id"`
	BattersFaced    int    `json:"batters_faced"`     // SentinelStat on failure
	HomeRunsAllowed int    `json:"home_runs_allowed"` // SentinelStat on failure
	StatError       string `json:"stat_error,omitempty"`
}

// HasStats reports whether the row carries real numbers.
func (p Pitcher) HasStats() bool {
	return p.BattersFaced != SentinelStat && p.HomeRunsAllowed != SentinelStat
}

// PitcherPayload is the pitchers dataset for one operating day.
type PitcherPayload struct {
	Pitchers   []Pitcher `json:"pitchers_data"`
	TotalGames int       `json:"total_games"`
}

// Hitter is one league leader row with today's matchup and odds context.
type Hitter struct {
	Name            string `json:"name"`
	Team            string `json:"team"`
	OpponentToday   string `json:"opponent_today"`
	AtBats          int    `json:"at_bats"` // SentinelStat on failure
	HomeRuns        int    `json:"home_runs"`
	TodaysOdds      string `json:"todays_odds"`
	RawOdds         int    `json:"odds_raw,omitempty"`
	SportsbookCount int    `json:"sportsbook_count"`
}

// OddsCoverage summarizes which games the books carry today.
type OddsCoverage struct {
	GamesWithOdds int      `json:"games_with_odds"`
	TeamsCovered  []string `json:"teams_covered"`
}

// HitterPayload is the hitters dataset for one operating day.
type HitterPayload struct {
	Hitters      []Hitter     `json:"hitters_data"`
	TotalHitters int          `json:"total_hitters"`
	OddsCoverage OddsCoverage `json:"odds_coverage"`
}

// SchedulePayload is the schedule dataset for one operating day.
type SchedulePayload struct {
	Games      []statsapi.Game `json:"games"`
	TotalGames int             `json:"total_games"`
}

// Source tags where a resolution was satisfied from.
type Source string

const (
	SourceMemory  Source = "memory"
	SourceDurable Source = "durable"
	SourceLive    Source = "live-fallback"
	SourceError   Source = "error"
)

// Resolution is a resolved daily dataset plus provenance.
type Resolution struct {
	Payload     interface{} `json:"payload"`
	Source      Source      `json:"source"`
	Day         string      `json:"today_date"`
	LastUpdated time.Time   `json:"last_updated"`
}
