// Package calendar decides which days the market is open.
//
// There is no holiday calendar: a day is a trading day purely by its
// weekday, so a public holiday that falls on a weekday is still treated as
// open.
package calendar

import (
	"errors"
	"time"
)

// DefaultOpenDays is Monday through Friday.
var DefaultOpenDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// Calendar maps dates to trading days. It is immutable and safe for
// concurrent use.
type Calendar struct {
	open [7]bool
}

// New creates a Calendar open on the given weekdays. It returns an error if
// no day is open.
func New(openDays []time.Weekday) (*Calendar, error) {
	c := &Calendar{}
	n := 0
	for _, d := range openDays {
		if d < time.Sunday || d > time.Saturday {
			return nil, errors.New("calendar: weekday out of range")
		}
		if !c.open[d] {
			c.open[d] = true
			n++
		}
	}
	if n == 0 {
		return nil, errors.New("calendar: at least one open day is required")
	}
	return c, nil
}

// Default returns a Monday–Friday calendar.
func Default() *Calendar {
	c, _ := New(DefaultOpenDays)
	return c
}

// IsTradingDay reports whether t falls on an open weekday, evaluated in t's
// own location.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	return c.open[t.Weekday()]
}

// NextTradingDay returns t if it is a trading day, otherwise the first
// following trading day at the same time of day. With the default calendar
// Saturday moves forward two days and Sunday one.
func (c *Calendar) NextTradingDay(t time.Time) time.Time {
	for i := 0; i < 7; i++ {
		d := t.AddDate(0, 0, i)
		if c.open[d.Weekday()] {
			return d
		}
	}
	// unreachable: New guarantees an open day
	return t
}
