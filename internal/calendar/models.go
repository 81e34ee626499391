// Package calendar classifies calendar days and composes the month grid,
// combining holidays, the weather forecast and the job index into per-day
// view state.
package calendar

import (
	"time"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// DayType is the classification of a calendar date.
type DayType string

// Day types, in increasing precedence.
const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// PublicHoliday is a named public holiday in one country.
type PublicHoliday struct {
	Date    caldate.Date `json:"date"`
	Name    string       `json:"name"`
	Country string       `json:"country"`
}

// HolidaySource answers holiday lookups for the classifier.
type HolidaySource interface {
	// Loaded reports whether holidays for year are available. Lookups on an
	// unloaded year are treated as "no holiday".
	Loaded(year int) bool

	// HolidayFor returns the holiday on d, or nil.
	HolidayFor(d caldate.Date) *PublicHoliday
}

// Weekday buckets for the month grid.
var (
	weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	weekends = []time.Weekday{time.Saturday, time.Sunday}
)
