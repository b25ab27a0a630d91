package statsapi

import "strconv"

// Game is one scheduled game, normalized from the schedule endpoint.
type Game struct {
	GamePK              int    `json:"game_pk"`
	Status              string `json:"status"`
	HomeID              int    `json:"home_id"`
	HomeName            string `json:"home_name"`
	AwayID              int    `json:"away_id"`
	AwayName            string `json:"away_name"`
	HomeProbablePitcher string `json:"home_probable_pitcher"`
	AwayProbablePitcher string `json:"away_probable_pitcher"`
	GameDate            string `json:"game_date"`
}

// Player is a player identity from a lookup or roster call.
type Player struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Position string `json:"position,omitempty"`
}

// Team is a team identity.
type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Leader is one row of a league-leaders listing.
type Leader struct {
	Rank     int    `json:"rank"`
	PersonID int    `json:"person_id"`
	Name     string `json:"name"`
	TeamName string `json:"team_name"`
	Value    int    `json:"value"`
}

// Stats is the loosely-typed stat map returned by the stats endpoint.
// Values come back as strings or numbers depending on the stat, so
// consumers go through the Int/Float accessors.
type Stats map[string]interface{}

// Int extracts an integer stat, reporting whether it was present and numeric.
func (s Stats) Int(key string) (int, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Float extracts a float stat, reporting whether it was present and numeric.
func (s Stats) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
