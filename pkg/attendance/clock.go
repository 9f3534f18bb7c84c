package attendance

import (
	"fmt"
	"time"
)

const (
	// TimestampLayout is the civil timestamp format stored in Record.Timestamp.
	TimestampLayout = "2006-01-02 15:04:05"

	// DayLayout is the calendar day format stored in Record.Day.
	DayLayout = "2006-01-02"

	// DefaultTimezone is the civil timezone used when none is configured.
	DefaultTimezone = "Asia/Ho_Chi_Minh"
)

// Clock formats and parses civil times in a fixed location. The zero value is
// not usable; use NewClock or LoadClock.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock in loc. A nil loc means UTC.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// LoadClock returns a clock for the named IANA timezone.
func LoadClock(name string) (*Clock, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return NewClock(loc), nil
}

// WithNow returns a copy of the clock that reads the current time from now.
// Tests use it to pin the clock.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

// Location returns the clock's civil location.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the civil location.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current civil day formatted with DayLayout.
func (c *Clock) Today() string {
	return c.Now().Format(DayLayout)
}

// Stamp formats t as a (timestamp, day) pair in the civil location.
func (c *Clock) Stamp(t time.Time) (timestamp, day string) {
	local := t.In(c.loc)
	return local.Format(TimestampLayout), local.Format(DayLayout)
}

// Parse interprets a stored timestamp in the civil location.
func (c *Clock) Parse(timestamp string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, timestamp, c.loc)
}

// ParseDay validates and interprets a day string in the civil location.
func (c *Clock) ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, c.loc)
}
