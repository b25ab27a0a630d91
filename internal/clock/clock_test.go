package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClockAt(t *testing.T, instant time.Time) *Clock {
	t.Helper()
	c, err := NewWithNow("US/Eastern", 3, func() time.Time { return instant })
	require.NoError(t, err)
	return c
}

func TestToday(t *testing.T) {
	eastern, err := time.LoadLocation("US/Eastern")
	require.NoError(t, err)

	tests := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "afternoon uses current date",
			instant:  time.Date(2025, 7, 8, 15, 30, 0, 0, eastern),
			expected: "2025-07-08",
		},
		{
			name:     "1 AM still belongs to previous day",
			instant:  time.Date(2025, 7, 9, 1, 0, 0, 0, eastern),
			expected: "2025-07-08",
		},
		{
			name:     "2:59 AM still belongs to previous day",
			instant:  time.Date(2025, 7, 9, 2, 59, 59, 0, eastern),
			expected: "2025-07-08",
		},
		{
			name:     "cutover hour itself starts the new day",
			instant:  time.Date(2025, 7, 9, 3, 0, 0, 0, eastern),
			expected: "2025-07-09",
		},
		{
			name:     "UTC instant is converted before the comparison",
			instant:  time.Date(2025, 7, 9, 5, 0, 0, 0, time.UTC), // 1 AM ET
			expected: "2025-07-08",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustClockAt(t, tt.instant)
			assert.Equal(t, tt.expected, c.Today())
		})
	}
}

func TestTodayConstantWithinPartition(t *testing.T) {
	eastern, err := time.LoadLocation("US/Eastern")
	require.NoError(t, err)

	// Every hour from 03:00 on the 8th through 02:00 on the 9th maps to the
	// same operating day.
	start := time.Date(2025, 7, 8, 3, 0, 0, 0, eastern)
	for h := 0; h < 24; h++ {
		c := mustClockAt(t, start.Add(time.Duration(h)*time.Hour))
		assert.Equal(t, "2025-07-08", c.Today(), "hour offset %d", h)
	}

	// One more hour crosses the cutover exactly once.
	c := mustClockAt(t, start.Add(24*time.Hour))
	assert.Equal(t, "2025-07-09", c.Today())
}

func TestNextCutover(t *testing.T) {
	eastern, err := time.LoadLocation("US/Eastern")
	require.NoError(t, err)

	c := mustClockAt(t, time.Date(2025, 7, 8, 15, 0, 0, 0, eastern))
	assert.Equal(t, time.Date(2025, 7, 9, 3, 0, 0, 0, eastern), c.NextCutover())

	c = mustClockAt(t, time.Date(2025, 7, 9, 1, 0, 0, 0, eastern))
	assert.Equal(t, time.Date(2025, 7, 9, 3, 0, 0, 0, eastern), c.NextCutover())

	c = mustClockAt(t, time.Date(2025, 7, 9, 3, 0, 0, 0, eastern))
	assert.Equal(t, time.Date(2025, 7, 10, 3, 0, 0, 0, eastern), c.NextCutover())
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New("Not/AZone", 3)
	assert.Error(t, err)
}
