package calendar

import (
	"github.com/tradeease/tradeease/pkg/caldate"
)

// Classifier maps dates to day types.
type Classifier struct {
	holidays HolidaySource
}

// NewClassifier creates a classifier. A nil source classifies on weekday
// alone.
func NewClassifier(holidays HolidaySource) *Classifier {
	return &Classifier{holidays: holidays}
}

// Classify returns the day type of d. Holiday takes precedence over weekend,
// weekend over weekday. While the holiday source has not loaded d's year,
// the result degrades to weekend/weekday.
func (c *Classifier) Classify(d caldate.Date) DayType {
	if c.Holiday(d) != nil {
		return DayTypeHoliday
	}
	if d.IsWeekend() {
		return DayTypeWeekend
	}
	return DayTypeWeekday
}

// Holiday returns the loaded holiday on d, or nil.
func (c *Classifier) Holiday(d caldate.Date) *PublicHoliday {
	if c == nil || c.holidays == nil || !c.holidays.Loaded(d.Year) {
		return nil
	}
	return c.holidays.HolidayFor(d)
}
