package calendar

import (
	"strconv"

	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// CellState is a derived visual classification of a day cell.
type CellState string

// Cell states in increasing priority. The background follows the highest
// active state; indicators of all active states stack.
const (
	StateDefault  CellState = "default"
	StateWeekend  CellState = "weekend"
	StateHoliday  CellState = "holiday"
	StateHasJobs  CellState = "has-jobs"
	StateToday    CellState = "today"
	StateSelected CellState = "selected"
)

// OutOfMonthOpacity is applied to padding days from adjacent months.
const OutOfMonthOpacity = 0.3

// Tooltip timings in milliseconds.
const (
	TooltipShowDelayMS = 300
	TooltipFadeInMS    = 150
	TooltipFadeOutMS   = 200
)

// TooltipAnchorCellCenter pins a tooltip to the centre of the hovered
// cell's bounding box.
const TooltipAnchorCellCenter = "cell-center"

// CellInput is everything a cell's state derives from.
type CellInput struct {
	DayType    DayType
	JobCount   int
	IsToday    bool
	IsSelected bool
}

// States returns the active states for in, lowest priority first.
func States(in CellInput) []CellState {
	states := []CellState{StateDefault}
	switch in.DayType {
	case DayTypeHoliday:
		states = append(states, StateHoliday)
	case DayTypeWeekend:
		states = append(states, StateWeekend)
	}
	if in.JobCount > 0 {
		states = append(states, StateHasJobs)
	}
	if in.IsToday {
		states = append(states, StateToday)
	}
	if in.IsSelected {
		states = append(states, StateSelected)
	}
	return states
}

// State returns the highest-priority active state for in.
func State(in CellInput) CellState {
	states := States(in)
	return states[len(states)-1]
}

// Style is a declarative style descriptor. Colours are design tokens, not
// CSS; renderers map them to their own palette.
type Style struct {
	Background string      `json:"background"`
	Border     string      `json:"border"`
	Text       string      `json:"text"`
	Bold       bool        `json:"bold"`
	Opacity    float64     `json:"opacity"`
	Indicators []Indicator `json:"indicators"`
}

// Indicator is a stacked marker on a cell.
type Indicator string

const (
	IndicatorHolidayBanner Indicator = "holiday-banner"
	IndicatorJobs          Indicator = "jobs"
	IndicatorJobDot        Indicator = "job-dot"
	IndicatorWeather       Indicator = "weather"
	IndicatorLightning     Indicator = "lightning"
)

var stateStyles = map[CellState]Style{
	StateDefault:  {Background: "white", Border: "slate-200", Text: "slate-900"},
	StateWeekend:  {Background: "blue-100", Border: "blue-300", Text: "blue-800"},
	StateHoliday:  {Background: "red-100", Border: "red-300", Text: "red-800", Bold: true},
	StateHasJobs:  {Background: "emerald-50", Border: "emerald-300", Text: "slate-900"},
	StateToday:    {Background: "slate-700", Border: "slate-700", Text: "white", Bold: true},
	StateSelected: {Background: "blue-600", Border: "blue-600", Text: "white"},
}

// StyleFor returns the style descriptor for a cell whose highest state is state.
func StyleFor(state CellState) Style {
	s := stateStyles[state]
	s.Opacity = 1
	return s
}

// Tooltip is a declarative tooltip for the weather indicator.
type Tooltip struct {
	Text        string `json:"text"`
	Anchor      string `json:"anchor"`
	ShowDelayMS int    `json:"showDelayMs"`
	FadeInMS    int    `json:"fadeInMs"`
	FadeOutMS   int    `json:"fadeOutMs"`
}

// NewTooltip creates the weather tooltip for a day.
func NewTooltip(r weather.RainData) *Tooltip {
	return &Tooltip{
		Text:        r.Tooltip(),
		Anchor:      TooltipAnchorCellCenter,
		ShowDelayMS: TooltipShowDelayMS,
		FadeInMS:    TooltipFadeInMS,
		FadeOutMS:   TooltipFadeOutMS,
	}
}

// CompactJobs is the mini-mode job summary: one dot and a count badge.
type CompactJobs struct {
	Color string `json:"color"`
	Count int    `json:"count"`
	Badge string `json:"badge"`
}

// Cell is the view state of one calendar day.
type Cell struct {
	Date       string             `json:"date"`
	Day        int                `json:"day"`
	Weekday    string             `json:"weekday"`
	DayType    DayType            `json:"dayType"`
	InMonth    bool               `json:"inMonth"`
	IsToday    bool               `json:"isToday"`
	IsSelected bool               `json:"isSelected"`
	State      CellState          `json:"state"`
	States     []CellState        `json:"states"`
	Style      Style              `json:"style"`
	Holiday    *PublicHoliday     `json:"holiday,omitempty"`
	Weather    *weather.RainData  `json:"weather,omitempty"`
	Tooltip    *Tooltip           `json:"tooltip,omitempty"`
	JobCount   int                `json:"jobCount"`
	Jobs       []job.ScheduledJob `json:"jobs,omitempty"`
	Compact    *CompactJobs       `json:"compact,omitempty"`
}

// RainLookup finds the weather for a date. *weather.Snapshot satisfies it.
type RainLookup interface {
	RainFor(d caldate.Date) (weather.RainData, bool)
}

// ComposeOptions are the per-render inputs shared by every cell.
type ComposeOptions struct {
	Today    caldate.Date
	Selected caldate.Date // zero for no selection

	// Month is any date in the displayed month; days outside it are dimmed.
	// Zero treats every day as in-month.
	Month caldate.Date

	Compact   bool
	TeamColor string
}

// Compose derives the view state of d. Jobs and weather may be nil; the
// cell degrades to its day type alone.
func (c *Classifier) Compose(d caldate.Date, jobs job.DateIndex, rain RainLookup, opts ComposeOptions) Cell {
	dayJobs := jobs.For(d)
	isToday := !opts.Today.IsZero() && d.Equal(opts.Today)
	isSelected := !opts.Selected.IsZero() && d.Equal(opts.Selected)

	in := CellInput{
		DayType:    c.Classify(d),
		JobCount:   len(dayJobs),
		IsToday:    isToday,
		IsSelected: isSelected,
	}
	states := States(in)
	state := states[len(states)-1]

	cell := Cell{
		Date:       d.Key(),
		Day:        d.Day,
		Weekday:    d.Weekday().String(),
		DayType:    in.DayType,
		InMonth:    opts.Month.IsZero() || d.SameMonth(opts.Month),
		IsToday:    isToday,
		IsSelected: isSelected,
		State:      state,
		States:     states,
		Style:      StyleFor(state),
		Holiday:    c.Holiday(d),
		JobCount:   len(dayJobs),
	}

	if !cell.InMonth {
		cell.Style.Opacity = OutOfMonthOpacity
	}

	indicators := []Indicator{}
	if cell.Holiday != nil {
		indicators = append(indicators, IndicatorHolidayBanner)
	}

	if rain != nil {
		if r, ok := rain.RainFor(d); ok {
			cell.Weather = &r
			cell.Tooltip = NewTooltip(r)
			indicators = append(indicators, IndicatorWeather)
			if r.HasLightning {
				indicators = append(indicators, IndicatorLightning)
			}
		}
	}

	if len(dayJobs) > 0 {
		if opts.Compact {
			color := opts.TeamColor
			if color == "" {
				color = job.TeamColor(dayJobs[0].Team)
			}
			cell.Compact = &CompactJobs{
				Color: color,
				Count: len(dayJobs),
				Badge: strconv.Itoa(len(dayJobs)),
			}
			indicators = append(indicators, IndicatorJobDot)
		} else {
			cell.Jobs = dayJobs
			indicators = append(indicators, IndicatorJobs)
		}
	}

	cell.Style.Indicators = indicators
	return cell
}
