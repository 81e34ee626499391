package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// ErrInvalidDirection is returned for an unknown navigation direction.
var ErrInvalidDirection = errors.New("invalid navigation direction")

// Navigation directions.
const (
	DirectionNext  = "next"
	DirectionPrev  = "prev"
	DirectionToday = "today"
)

// MonthGrid holds the dates of one month split into weekday and weekend
// buckets, each in ascending order.
type MonthGrid struct {
	Year         int            `json:"year"`
	Month        time.Month     `json:"month"`
	First        caldate.Date   `json:"first"`
	Last         caldate.Date   `json:"last"`
	WeekdayCells []caldate.Date `json:"weekdayCells"`
	WeekendCells []caldate.Date `json:"weekendCells"`
}

// Title is the display title, e.g. "February 2024".
func (g MonthGrid) Title() string {
	return fmt.Sprintf("%s %d", g.Month, g.Year)
}

// Dates returns every date of the month in order.
func (g MonthGrid) Dates() []caldate.Date {
	return caldate.Range(g.First, g.Last)
}

// Assemble enumerates the month containing anchor, first to last day
// inclusive, and partitions the dates by weekday.
func Assemble(anchor caldate.Date) MonthGrid {
	first := anchor.FirstOfMonth()
	last := anchor.LastOfMonth()

	g := MonthGrid{
		Year:         first.Year,
		Month:        first.Month,
		First:        first,
		Last:         last,
		WeekdayCells: make([]caldate.Date, 0, 23),
		WeekendCells: make([]caldate.Date, 0, 10),
	}

	for _, d := range caldate.Range(first, last) {
		if d.IsWeekend() {
			g.WeekendCells = append(g.WeekendCells, d)
		} else {
			g.WeekdayCells = append(g.WeekdayCells, d)
		}
	}

	return g
}

// WeekdayHeaders and WeekendHeaders label the two grid sections.
var (
	WeekdayHeaders = headers(weekdays)
	WeekendHeaders = headers(weekends)
)

func headers(days []time.Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String()[:3])
	}
	return out
}

// WeekSlot is one position in a 7-column week row.
type WeekSlot struct {
	Date    caldate.Date `json:"date"`
	InMonth bool         `json:"inMonth"`
}

// Weeks lays the month containing anchor out in Monday-first rows of seven.
// Leading and trailing slots are filled from the adjacent months and
// flagged as out of month.
func Weeks(anchor caldate.Date) [][]WeekSlot {
	first := anchor.FirstOfMonth()
	last := anchor.LastOfMonth()

	// Monday = 0 ... Sunday = 6.
	lead := (int(first.Weekday()) + 6) % 7
	trail := 6 - (int(last.Weekday())+6)%7

	start := first.AddDays(-lead)
	end := last.AddDays(trail)

	var (
		weeks [][]WeekSlot
		row   []WeekSlot
	)
	for _, d := range caldate.Range(start, end) {
		row = append(row, WeekSlot{Date: d, InMonth: d.SameMonth(first)})
		if len(row) == 7 {
			weeks = append(weeks, row)
			row = nil
		}
	}

	return weeks
}

// NextMonth shifts anchor forward one calendar month.
func NextMonth(anchor caldate.Date) caldate.Date {
	return anchor.AddMonths(1)
}

// PrevMonth shifts anchor back one calendar month.
func PrevMonth(anchor caldate.Date) caldate.Date {
	return anchor.AddMonths(-1)
}

// Navigate applies direction to anchor. "today" resets to today.
func Navigate(anchor caldate.Date, direction string, today caldate.Date) (caldate.Date, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case DirectionNext:
		return NextMonth(anchor), nil
	case DirectionPrev, "previous":
		return PrevMonth(anchor), nil
	case DirectionToday:
		return today, nil
	default:
		return caldate.Date{}, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
}
