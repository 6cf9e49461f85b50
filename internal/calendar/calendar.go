// Package calendar answers the two date questions the forecaster asks: is the
// exchange session still open, and which day is the next trading day.
// Exchange holidays are not modelled; only weekends are skipped.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// SessionState is the daily open/closed state of the exchange.
type SessionState string

const (
	SessionOpen   SessionState = "open"
	SessionClosed SessionState = "closed"
)

// DefaultTimezone is the exchange timezone of the IDX (WIB).
const DefaultTimezone = "Asia/Jakarta"

// Clock is the time source used for "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Calendar holds the exchange timezone and the daily close cutoff.
type Calendar struct {
	Location    *time.Location
	CloseHour   int
	CloseMinute int
}

// New loads the timezone and returns a Calendar with the given cutoff.
func New(timezone string, closeHour, closeMinute int) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if closeHour < 0 || closeHour > 23 || closeMinute < 0 || closeMinute > 59 {
		return nil, fmt.Errorf("invalid close time %02d:%02d", closeHour, closeMinute)
	}
	return &Calendar{Location: loc, CloseHour: closeHour, CloseMinute: closeMinute}, nil
}

// SessionState reports open when now, in exchange time, is strictly before the
// close cutoff. The cutoff instant itself is closed.
func (c *Calendar) SessionState(now time.Time) SessionState {
	local := now.In(c.Location)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), c.CloseHour, c.CloseMinute, 0, 0, c.Location)
	if local.Before(cutoff) {
		return SessionOpen
	}
	return SessionClosed
}

// IsOpen is shorthand for SessionState(now) == SessionOpen.
func (c *Calendar) IsOpen(now time.Time) bool {
	return c.SessionState(now) == SessionOpen
}

// Today returns midnight of now's date in exchange time.
func (c *Calendar) Today(now time.Time) time.Time {
	return DateOf(now.In(c.Location))
}

// NextTradingDay moves date forward one day at a time while it falls on a
// Saturday or Sunday. A weekday is returned unchanged.
func NextTradingDay(date time.Time) time.Time {
	for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
