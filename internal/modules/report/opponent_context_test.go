package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clients/odds"
	"github.com/djstrauss/dingertuesday/internal/clients/statsapi"
	"github.com/djstrauss/dingertuesday/internal/modules/analysis"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
)

func rosterStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/111/roster", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"roster": [
			{"person": {"id": 1, "fullName": "Rafael Devers"}, "position": {"abbreviation": "3B"}},
			{"person": {"id": 2, "fullName": "Trevor Story"}, "position": {"abbreviation": "SS"}},
			{"person": {"id": 3, "fullName": "No Market"}, "position": {"abbreviation": "C"}}
		]}`))
	})
	return httptest.NewServer(mux)
}

func oddsFeedStub(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
}

const redSoxFeed = `{
	"games": [{
		"away_team": "Boston Red Sox",
		"home_team": "New York Yankees",
		"players": [
			{"player_name": "Rafael Devers", "line": 0.5, "over_odds": {"consensus": 230}, "sportsbook_count": 6},
			{"player_name": "Trevor Story", "line": 0.5, "over_odds": {"consensus": 480}, "sportsbook_count": 4}
		]
	}]
}`

func lineupFixture(t *testing.T, apiURL, oddsURL string) *OpponentLineup {
	t.Helper()

	log := testLogger()
	c := cache.New(log)
	apiClient := statsapi.NewClient(apiURL, 5*time.Second, log)
	oddsClient := odds.NewClient(oddsURL, 5*time.Second, log)
	lookups := daily.NewLookups(apiClient, c, 2025, daily.LookupTTLs{
		Stats:  time.Hour,
		Roster: time.Hour,
		Lookup: time.Hour,
	}, log)
	return NewOpponentLineup(lookups, oddsClient, log)
}

func coleVsRedSox() analysis.Score {
	return analysis.Score{
		Pitcher: daily.Pitcher{
			Name:            "Gerrit Cole",
			Team:            "New York Yankees",
			Opponent:        "Boston Red Sox",
			OpponentID:      111,
			BattersFaced:    500,
			HomeRunsAllowed: 40,
		},
		HRRate: 8.0,
	}
}

func TestOpponentContextNamesTheFavorite(t *testing.T) {
	api := rosterStub()
	defer api.Close()
	feed := oddsFeedStub(redSoxFeed)
	defer feed.Close()

	line := lineupFixture(t, api.URL, feed.URL).OpponentContext(context.Background(), coleVsRedSox())

	// Devers at +230 is the stronger favorite of the two priced hitters.
	assert.Contains(t, line, "2 Boston Red Sox hitters")
	assert.Contains(t, line, "Rafael Devers")
	assert.Contains(t, line, "+230")
	assert.NotContains(t, line, "No Market")
}

func TestOpponentContextSinglePricedHitter(t *testing.T) {
	api := rosterStub()
	defer api.Close()
	feed := oddsFeedStub(`{"games": [{
		"away_team": "Boston Red Sox",
		"home_team": "New York Yankees",
		"players": [{"player_name": "Trevor Story", "line": 0.5, "over_odds": {"consensus": 480}, "sportsbook_count": 4}]
	}]}`)
	defer feed.Close()

	line := lineupFixture(t, api.URL, feed.URL).OpponentContext(context.Background(), coleVsRedSox())
	assert.Equal(t, "The books price Trevor Story to go deep at +480.", line)
}

func TestOpponentContextDegradesToEmpty(t *testing.T) {
	api := rosterStub()
	defer api.Close()
	feed := oddsFeedStub(`{"games": []}`)
	defer feed.Close()

	t.Run("no priced hitters", func(t *testing.T) {
		line := lineupFixture(t, api.URL, feed.URL).OpponentContext(context.Background(), coleVsRedSox())
		assert.Empty(t, line)
	})

	t.Run("unknown opponent", func(t *testing.T) {
		score := coleVsRedSox()
		score.Pitcher.OpponentID = 0
		line := lineupFixture(t, api.URL, feed.URL).OpponentContext(context.Background(), score)
		assert.Empty(t, line)
	})

	t.Run("roster fetch failure", func(t *testing.T) {
		deadAPI := rosterStub()
		deadAPI.Close()
		line := lineupFixture(t, deadAPI.URL, feed.URL).OpponentContext(context.Background(), coleVsRedSox())
		assert.Empty(t, line)
	})

	t.Run("odds fetch failure", func(t *testing.T) {
		deadFeed := oddsFeedStub("")
		deadFeed.Close()
		line := lineupFixture(t, api.URL, deadFeed.URL).OpponentContext(context.Background(), coleVsRedSox())
		assert.Empty(t, line)
	})
}

// The wired generator must actually carry the market line into the
// document body; without a provider the section stays bare.
func TestGenerateCarriesLineupContext(t *testing.T) {
	api := rosterStub()
	defer api.Close()
	feed := oddsFeedStub(redSoxFeed)
	defer feed.Close()

	scores := []analysis.Score{coleVsRedSox()}

	with := NewGenerator(Config{}, lineupFixture(t, api.URL, feed.URL), testLogger())
	doc := with.Generate(context.Background(), "2025-07-08", scores)
	require.Contains(t, doc.Body, "He faces the Boston Red Sox today. The books price 2 Boston Red Sox hitters")

	without := NewGenerator(Config{}, nil, testLogger())
	bare := without.Generate(context.Background(), "2025-07-08", scores)
	assert.NotContains(t, bare.Body, "The books price")
	assert.Greater(t, len(doc.Body), len(bare.Body))
}
