// Package clock computes the operating day for MLB data.
//
// The MLB day does not roll at midnight: games routinely run past 1 AM
// Eastern, so everything before the cutover hour (3 AM by default) still
// belongs to the previous day's slate.
package clock

import (
	"time"
)

// DayFormat is the canonical operating-day layout.
const DayFormat = "2006-01-02"

// Clock derives the current operating day from wall-clock time,
// a timezone and a cutover hour.
type Clock struct {
	loc         *time.Location
	cutoverHour int
	now         func() time.Time
}

// New creates a clock for the given timezone name and cutover hour.
func New(timezone string, cutoverHour int) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Clock{
		loc:         loc,
		cutoverHour: cutoverHour,
		now:         time.Now,
	}, nil
}

// NewWithNow creates a clock with an injected time source, for tests.
func NewWithNow(timezone string, cutoverHour int, now func() time.Time) (*Clock, error) {
	c, err := New(timezone, cutoverHour)
	if err != nil {
		return nil, err
	}
	c.now = now
	return c, nil
}

// Today returns the current operating day as "YYYY-MM-DD".
// Before the cutover hour the previous calendar date is still in effect;
// at the cutover hour exactly, the new day begins.
func (c *Clock) Today() string {
	local := c.now().In(c.loc)
	if local.Hour() < c.cutoverHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(DayFormat)
}

// Now returns the current instant in the clock's timezone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Location returns the clock's timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// NextCutover returns the next instant at which the operating day changes.
func (c *Clock) NextCutover() time.Time {
	local := c.now().In(c.loc)
	cutover := time.Date(local.Year(), local.Month(), local.Day(), c.cutoverHour, 0, 0, 0, c.loc)
	if !local.Before(cutover) {
		cutover = cutover.AddDate(0, 0, 1)
	}
	return cutover
}
