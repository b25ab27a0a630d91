package daily

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djstrauss/dingertuesday/internal/database"
	"github.com/djstrauss/dingertuesday/pkg/logger"
)

func testLogger() zerolog.Logger {
	return logger.New(logger.Config{Level: "error", Pretty: false})
}

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return NewStore(db.Conn(), testLogger())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)

	payload := &PitcherPayload{
		Pitchers: []Pitcher{
			{Name: "Gerrit Cole", Team: "New York Yankees", Opponent: "Boston Red Sox", BattersFaced: 500, HomeRunsAllowed: 12},
		},
		TotalGames: 1,
	}
	require.NoError(t, store.Save(ClassPitchers, "2025-07-08", payload))

	raw, found, err := store.Load(ClassPitchers, "2025-07-08")
	require.NoError(t, err)
	require.True(t, found)

	decoded, err := decodePayload(ClassPitchers, raw)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestLoadAbsent(t *testing.T) {
	store := testStore(t)

	_, found, err := store.Load(ClassHitters, "2025-07-08")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveUpsertsOnSameKey(t *testing.T) {
	store := testStore(t)

	first := &SchedulePayload{TotalGames: 1}
	second := &SchedulePayload{TotalGames: 15}

	require.NoError(t, store.Save(ClassSchedule, "2025-07-08", first))
	require.NoError(t, store.Save(ClassSchedule, "2025-07-08", second))

	raw, found, err := store.Load(ClassSchedule, "2025-07-08")
	require.NoError(t, err)
	require.True(t, found)

	decoded, err := decodePayload(ClassSchedule, raw)
	require.NoError(t, err)
	assert.Equal(t, 15, decoded.(*SchedulePayload).TotalGames)

	// One row, not two.
	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM daily_data").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPurgeOlderThanKeepsBoundaryDay(t *testing.T) {
	store := testStore(t)

	days := []string{"2025-07-01", "2025-07-02", "2025-07-03", "2025-07-08"}
	for _, day := range days {
		require.NoError(t, store.Save(ClassPitchers, day, &PitcherPayload{}))
	}

	deleted, err := store.PurgeOlderThan("2025-07-02")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.False(t, store.Has(ClassPitchers, "2025-07-01"))
	assert.True(t, store.Has(ClassPitchers, "2025-07-02"), "boundary day must be retained")
	assert.True(t, store.Has(ClassPitchers, "2025-07-03"))
	assert.True(t, store.Has(ClassPitchers, "2025-07-08"))
}

func TestPurgeCountsAcrossClasses(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Save(ClassPitchers, "2025-07-01", &PitcherPayload{}))
	require.NoError(t, store.Save(ClassHitters, "2025-07-01", &HitterPayload{}))
	require.NoError(t, store.Save(ClassSchedule, "2025-07-05", &SchedulePayload{}))

	deleted, err := store.PurgeOlderThan("2025-07-05")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}
