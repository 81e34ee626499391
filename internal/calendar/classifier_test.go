package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// staticHolidays is a HolidaySource over a fixed table.
type staticHolidays struct {
	loaded   map[int]bool
	holidays map[string]calendar.PublicHoliday
}

func newStaticHolidays(holidays ...calendar.PublicHoliday) *staticHolidays {
	s := &staticHolidays{
		loaded:   make(map[int]bool),
		holidays: make(map[string]calendar.PublicHoliday),
	}
	for _, h := range holidays {
		s.loaded[h.Date.Year] = true
		s.holidays[h.Date.Key()] = h
	}
	return s
}

func (s *staticHolidays) Loaded(year int) bool { return s.loaded[year] }

func (s *staticHolidays) HolidayFor(d caldate.Date) *calendar.PublicHoliday {
	h, ok := s.holidays[d.Key()]
	if !ok {
		return nil
	}
	return &h
}

func TestClassifier_Classify(t *testing.T) {
	source := newStaticHolidays(
		calendar.PublicHoliday{Date: caldate.MustParse("2026-04-25"), Name: "Anzac Day", Country: "AU"},
		calendar.PublicHoliday{Date: caldate.MustParse("2026-01-26"), Name: "Australia Day", Country: "AU"},
	)
	classifier := calendar.NewClassifier(source)

	tests := []struct {
		name string
		date string
		want calendar.DayType
	}{
		{"holiday on a Saturday", "2026-04-25", calendar.DayTypeHoliday},
		{"holiday on a Monday", "2026-01-26", calendar.DayTypeHoliday},
		{"plain Saturday", "2026-04-18", calendar.DayTypeWeekend},
		{"plain Sunday", "2026-04-19", calendar.DayTypeWeekend},
		{"plain Tuesday", "2026-04-21", calendar.DayTypeWeekday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(caldate.MustParse(tt.date)))
		})
	}
}

func TestClassifier_DegradesWithoutHolidays(t *testing.T) {
	// The source knows 2026 only; 2027 lookups degrade.
	source := newStaticHolidays(
		calendar.PublicHoliday{Date: caldate.MustParse("2026-12-25"), Name: "Christmas Day"},
	)
	classifier := calendar.NewClassifier(source)

	assert.Equal(t, calendar.DayTypeWeekday, classifier.Classify(caldate.MustParse("2027-12-24")))
	assert.Nil(t, classifier.Holiday(caldate.MustParse("2027-12-25")))

	bare := calendar.NewClassifier(nil)
	assert.Equal(t, calendar.DayTypeWeekend, bare.Classify(caldate.MustParse("2026-04-25")))
	assert.Equal(t, calendar.DayTypeWeekday, bare.Classify(caldate.MustParse("2026-04-24")))
}
