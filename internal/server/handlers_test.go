package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clients/odds"
	"github.com/djstrauss/dingertuesday/internal/clients/statsapi"
	"github.com/djstrauss/dingertuesday/internal/clock"
	"github.com/djstrauss/dingertuesday/internal/database"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
	"github.com/djstrauss/dingertuesday/internal/modules/matchup"
	"github.com/djstrauss/dingertuesday/internal/modules/report"
	"github.com/djstrauss/dingertuesday/internal/scheduler"
	"github.com/djstrauss/dingertuesday/pkg/logger"
)

func testLog() zerolog.Logger {
	return logger.New(logger.Config{Level: "error"})
}

type stubFetcher struct {
	payload interface{}
	err     error
}

func (s *stubFetcher) Fetch(ctx context.Context, day string) (interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

type noopJob struct {
	name string
}

func (j *noopJob) Name() string                  { return j.name }
func (j *noopJob) Run(ctx context.Context) error { return nil }
func (j *noopJob) OncePerDay() bool              { return true }

// statsAPIStub serves the handful of provider endpoints the matchup
// path walks.
func statsAPIStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/147", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"teams": [{"id": 147, "name": "New York Yankees", "abbreviation": "NYY"}]}`))
	})
	mux.HandleFunc("/teams/147/roster", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"roster": [
			{"person": {"id": 592450, "fullName": "Aaron Judge"}, "position": {"abbreviation": "RF"}},
			{"person": {"id": 650402, "fullName": "Light Hitter"}, "position": {"abbreviation": "SS"}}
		]}`))
	})
	mux.HandleFunc("/people/592450/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats": [{"splits": [{"stat": {"atBats": 320, "homeRuns": 32}}]}]}`))
	})
	mux.HandleFunc("/people/650402/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats": [{"splits": [{"stat": {"atBats": 4, "homeRuns": 0}}]}]}`))
	})
	return httptest.NewServer(mux)
}

func oddsStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"games": [{
			"away_team": "Boston Red Sox",
			"home_team": "New York Yankees",
			"players": [{"player_name": "Aaron Judge", "line": 0.5, "over_odds": {"consensus": 250}, "sportsbook_count": 7}]
		}]}`))
	}))
}

type serverFixture struct {
	srv      *Server
	pitchers *stubFetcher
	hitters  *stubFetcher
	content  *report.ContentRepository
	cache    *cache.Cache
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	log := testLog()

	now := time.Date(2025, 7, 8, 12, 0, 0, 0, time.UTC)
	clk, err := clock.NewWithNow("UTC", 3, func() time.Time { return now })
	require.NoError(t, err)

	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	apiSrv := statsAPIStub()
	t.Cleanup(apiSrv.Close)
	oddsSrv := oddsStub()
	t.Cleanup(oddsSrv.Close)

	c := cache.New(log)
	store := daily.NewStore(db.Conn(), log)

	pitchers := &stubFetcher{payload: &daily.PitcherPayload{
		Pitchers:   []daily.Pitcher{{Name: "Gerrit Cole", Team: "New York Yankees", BattersFaced: 512, HomeRunsAllowed: 14}},
		TotalGames: 1,
	}}
	hitters := &stubFetcher{err: errors.New("feed down")}

	resolver := daily.NewResolver(clk, c, store, map[daily.DataClass]daily.Fetcher{
		daily.ClassPitchers: pitchers,
		daily.ClassHitters:  hitters,
	}, log)

	apiClient := statsapi.NewClient(apiSrv.URL, 5*time.Second, log)
	oddsClient := odds.NewClient(oddsSrv.URL, 5*time.Second, log)
	lookups := daily.NewLookups(apiClient, c, 2025, daily.LookupTTLs{
		Stats:  time.Hour,
		Roster: time.Hour,
		Lookup: time.Hour,
	}, log)
	matchups := matchup.NewService(lookups, oddsClient, c, time.Hour, log)

	content := report.NewContentRepository(db.Conn(), log)

	sched := scheduler.New(clk, log)
	require.NoError(t, sched.Register(&noopJob{name: "refresh"}, scheduler.Schedule{Hour: 3}))

	srv := New(Config{
		Port:          0,
		DevMode:       true,
		Log:           log,
		Clock:         clk,
		Cache:         c,
		Resolver:      resolver,
		Store:         store,
		Matchups:      matchups,
		Content:       content,
		Scheduler:     sched,
		RetentionDays: 7,
	})

	return &serverFixture{srv: srv, pitchers: pitchers, hitters: hitters, content: content, cache: c}
}

func (fx *serverFixture) request(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	fx.srv.Router().ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2025-07-08", body["day"])
}

func TestPitchersEndpoint(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/api/pitchers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live-fallback", body["source"])
	assert.Equal(t, "2025-07-08", body["today_date"])

	// Second hit comes out of memory.
	rec, body = fx.request(t, http.MethodGet, "/api/pitchers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "memory", body["source"])
}

func TestDailyEndpointFailure(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/api/hitters")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "error", body["source"])
	assert.Equal(t, "2025-07-08", body["today_date"])
	assert.Contains(t, body["error"], "feed down")
}

func TestMatchupHitters(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/api/matchup_hitters/147")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New York Yankees", body["team_name"])

	rows := body["matchup_data"].([]interface{})
	// The 4-at-bat hitter falls under the floor.
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "Aaron Judge", row["name"])
	assert.Equal(t, "+250", row["todays_odds"])
}

func TestMatchupHittersBadID(t *testing.T) {
	fx := newServerFixture(t)

	rec, _ := fx.request(t, http.MethodGet, "/api/matchup_hitters/yankees")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticles(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/api/articles")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["articles"])

	_, err := fx.content.Create(report.Document{
		Title:   "Today's Targets",
		Summary: "Three arms to watch",
		Body:    "...",
		Tags:    []string{"daily"},
	}, "MLB Analyst")
	require.NoError(t, err)

	rec, body = fx.request(t, http.MethodGet, "/api/articles")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["articles"], 1)

	rec, body = fx.request(t, http.MethodGet, "/api/articles/todays-targets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Today's Targets", body["title"])

	rec, _ = fx.request(t, http.MethodGet, "/api/articles/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDailyStatus(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/api/daily_status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-07-08", body["today"])
	assert.Equal(t, false, body["scheduler_running"])

	local := body["local_time"].(map[string]interface{})
	assert.Equal(t, "UTC", local["timezone"])

	classes := body["classes"].(map[string]interface{})
	assert.Contains(t, classes, "pitchers")
}

func TestTriggerRefresh(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodPost, "/api/admin/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
}

func TestTriggerUnknownJob(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodPost, "/api/admin/jobs/nope/trigger")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", body["status"])
}

func TestClearCache(t *testing.T) {
	fx := newServerFixture(t)
	fx.cache.Put("roster_147_2025", "x", time.Hour)
	fx.cache.Put("player_lookup_judge", "y", time.Hour)

	rec, body := fx.request(t, http.MethodPost, "/api/admin/clear_cache?prefix=roster_")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["message"], "cleared 1 entries")
	assert.Equal(t, 1, fx.cache.Len())

	rec, _ = fx.request(t, http.MethodPost, "/api/admin/clear_cache")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, fx.cache.Len())
}

func TestPurge(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodPost, "/api/admin/purge")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["message"], "purged 0 records")
}

func TestSchedulerStatus(t *testing.T) {
	fx := newServerFixture(t)

	rec, body := fx.request(t, http.MethodGet, "/api/admin/scheduler")
	require.Equal(t, http.StatusOK, rec.Code)

	jobs := body["jobs"].([]interface{})
	require.Len(t, jobs, 1)
	assert.Equal(t, "refresh", jobs[0].(map[string]interface{})["name"])
}
