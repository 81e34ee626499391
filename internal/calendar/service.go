package calendar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// JobSource provides the job index for a date range.
type JobSource interface {
	IndexRange(ctx context.Context, from, to caldate.Date) (job.DateIndex, error)
}

// WeatherSource provides the forecast snapshot for a site.
type WeatherSource interface {
	Forecast(ctx context.Context, site weather.Site) (*weather.Snapshot, error)
}

// HolidayLoader loads holiday tables ahead of classification.
type HolidayLoader interface {
	Load(ctx context.Context, years ...int) error
}

// DayClickFunc receives a clicked date and the jobs on it.
type DayClickFunc func(ctx context.Context, date caldate.Date, jobs []job.ScheduledJob) error

// DropFunc receives a drop on a date. The calendar does not interpret it.
type DropFunc func(ctx context.Context, event DropEvent, date caldate.Date) error

// DropJobIDKey is the transfer slot carrying the dragged job's ID.
const DropJobIDKey = "jobId"

// DropEvent is the payload of a drop on a day cell.
type DropEvent struct {
	Data map[string]string `json:"data"`
}

// NewDropEvent creates a drop event carrying jobID.
func NewDropEvent(jobID string) DropEvent {
	return DropEvent{Data: map[string]string{DropJobIDKey: jobID}}
}

// JobID returns the dragged job's ID, or "".
func (e DropEvent) JobID() string {
	return e.Data[DropJobIDKey]
}

// Handlers are the caller-supplied interaction callbacks.
type Handlers struct {
	OnDayClick DayClickFunc
	OnDrop     DropFunc
}

// ServiceConfig holds configuration for the calendar service.
type ServiceConfig struct {
	// Classifier classifies days. Required.
	Classifier *Classifier

	// Holidays, when set, is loaded for each year a view touches.
	Holidays HolidayLoader

	// Jobs and Weather are optional; views degrade without them.
	Jobs    JobSource
	Weather WeatherSource

	// Site is the default forecast location.
	Site weather.Site

	// Handlers receive clicks and drops.
	Handlers Handlers

	// Location decides what "today" is (default: UTC).
	Location *time.Location

	// Now overrides the clock in tests.
	Now func() time.Time

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service builds month views.
type Service struct {
	classifier *Classifier
	holidays   HolidayLoader
	jobs       JobSource
	weather    WeatherSource
	site       weather.Site
	handlers   Handlers
	loc        *time.Location
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService creates a new calendar service.
func NewService(cfg ServiceConfig) *Service {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = NewClassifier(nil)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		classifier: classifier,
		holidays:   cfg.Holidays,
		jobs:       cfg.Jobs,
		weather:    cfg.Weather,
		site:       cfg.Site,
		handlers:   cfg.Handlers,
		loc:        loc,
		now:        now,
		logger:     cfg.Logger,
	}
}

// Today returns the current date in the service's location.
func (s *Service) Today() caldate.Date {
	return caldate.FromTime(s.now().In(s.loc))
}

// Classifier returns the day classifier.
func (s *Service) Classifier() *Classifier {
	return s.classifier
}

// ViewRequest selects a month view.
type ViewRequest struct {
	Anchor    caldate.Date
	Selected  caldate.Date
	Compact   bool
	TeamColor string

	// Today overrides the service clock for highlighting.
	Today caldate.Date

	// Site overrides the default forecast location.
	Site *weather.Site
}

func (s *Service) today(req ViewRequest) caldate.Date {
	if !req.Today.IsZero() {
		return req.Today
	}
	return s.Today()
}

// WeatherStatus summarizes the forecast behind a view.
type WeatherStatus struct {
	Available  bool      `json:"available"`
	Fallback   bool      `json:"fallback"`
	Loading    bool      `json:"loading"`
	Provider   string    `json:"provider,omitempty"`
	LastUpdate time.Time `json:"lastUpdate,omitempty"`
}

// MonthView is the composed view of one month.
type MonthView struct {
	Title          string          `json:"title"`
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	Anchor         string          `json:"anchor"`
	Today          string          `json:"today"`
	Selected       string          `json:"selected,omitempty"`
	Compact        bool            `json:"compact"`
	WeekdayHeaders []string        `json:"weekdayHeaders"`
	WeekendHeaders []string        `json:"weekendHeaders"`
	WeekdayCells   []Cell          `json:"weekdayCells"`
	WeekendCells   []Cell          `json:"weekendCells"`
	Holidays       []PublicHoliday `json:"holidays"`
	JobCount       int             `json:"jobCount"`
	Weather        WeatherStatus   `json:"weather"`
}

// WeeksView is the 7-column layout of one month.
type WeeksView struct {
	Title   string        `json:"title"`
	Anchor  string        `json:"anchor"`
	Headers []string      `json:"headers"`
	Weeks   [][]Cell      `json:"weeks"`
	Weather WeatherStatus `json:"weather"`
}

// DayDetail is the result of clicking a day.
type DayDetail struct {
	Cell Cell               `json:"cell"`
	Jobs []job.ScheduledJob `json:"jobs"`
}

// sources gathers the independent inputs of a view. Each source failing
// degrades the view instead of failing it.
type sources struct {
	jobs    job.DateIndex
	rain    *weather.Snapshot
	weather WeatherStatus
}

func (s *Service) gather(ctx context.Context, from, to caldate.Date, site *weather.Site) sources {
	var src sources

	if s.holidays != nil {
		years := []int{from.Year}
		if to.Year != from.Year {
			years = append(years, to.Year)
		}
		if err := s.holidays.Load(ctx, years...); err != nil {
			s.logger.Warn().Err(err).Ints("years", years).Msg("holidays unavailable, classifying by weekday")
		}
	}

	if s.jobs != nil {
		idx, err := s.jobs.IndexRange(ctx, from, to)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("from", from.Key()).
				Str("to", to.Key()).
				Msg("jobs unavailable")
		}
		src.jobs = idx
	}

	if s.weather != nil {
		target := s.site
		if site != nil {
			target = *site
		}
		snap, err := s.weather.Forecast(ctx, target)
		if err != nil {
			s.logger.Warn().Err(err).Str("site", target.Name).Msg("weather unavailable")
		}
		if snap != nil {
			src.rain = snap
			src.weather = WeatherStatus{
				Available:  true,
				Fallback:   snap.Fallback,
				Loading:    snap.Loading,
				Provider:   snap.Provider,
				LastUpdate: snap.LastUpdate,
			}
		}
	}

	return src
}

// Month composes the month containing req.Anchor.
func (s *Service) Month(ctx context.Context, req ViewRequest) (*MonthView, error) {
	today := s.today(req)
	if req.Anchor.IsZero() {
		req.Anchor = today
	}

	grid := Assemble(req.Anchor)
	src := s.gather(ctx, grid.First, grid.Last, req.Site)

	opts := ComposeOptions{
		Today:     today,
		Selected:  req.Selected,
		Month:     grid.First,
		Compact:   req.Compact,
		TeamColor: req.TeamColor,
	}

	view := &MonthView{
		Title:          grid.Title(),
		Year:           grid.Year,
		Month:          grid.Month,
		Anchor:         req.Anchor.Key(),
		Today:          opts.Today.Key(),
		Compact:        req.Compact,
		WeekdayHeaders: WeekdayHeaders,
		WeekendHeaders: WeekendHeaders,
		WeekdayCells:   make([]Cell, 0, len(grid.WeekdayCells)),
		WeekendCells:   make([]Cell, 0, len(grid.WeekendCells)),
		Holidays:       []PublicHoliday{},
		Weather:        src.weather,
	}
	if !req.Selected.IsZero() {
		view.Selected = req.Selected.Key()
	}

	for _, d := range grid.WeekdayCells {
		view.WeekdayCells = append(view.WeekdayCells, s.classifier.Compose(d, src.jobs, src.rain, opts))
	}
	for _, d := range grid.WeekendCells {
		view.WeekendCells = append(view.WeekendCells, s.classifier.Compose(d, src.jobs, src.rain, opts))
	}

	for _, d := range grid.Dates() {
		if h := s.classifier.Holiday(d); h != nil {
			view.Holidays = append(view.Holidays, *h)
		}
		view.JobCount += src.jobs.Count(d)
	}

	s.logger.Debug().
		Str("month", view.Title).
		Int("jobs", view.JobCount).
		Int("holidays", len(view.Holidays)).
		Bool("weather", view.Weather.Available).
		Msg("composed month view")

	return view, nil
}

// Weeks composes the 7-column layout of the month containing req.Anchor.
func (s *Service) Weeks(ctx context.Context, req ViewRequest) (*WeeksView, error) {
	today := s.today(req)
	if req.Anchor.IsZero() {
		req.Anchor = today
	}

	weeks := Weeks(req.Anchor)
	from := weeks[0][0].Date
	last := weeks[len(weeks)-1]
	to := last[len(last)-1].Date

	src := s.gather(ctx, from, to, req.Site)
	opts := ComposeOptions{
		Today:     today,
		Selected:  req.Selected,
		Month:     req.Anchor,
		Compact:   req.Compact,
		TeamColor: req.TeamColor,
	}

	view := &WeeksView{
		Title:   Assemble(req.Anchor).Title(),
		Anchor:  req.Anchor.Key(),
		Headers: append(append([]string{}, WeekdayHeaders...), WeekendHeaders...),
		Weeks:   make([][]Cell, 0, len(weeks)),
		Weather: src.weather,
	}
	for _, week := range weeks {
		row := make([]Cell, 0, len(week))
		for _, slot := range week {
			row = append(row, s.classifier.Compose(slot.Date, src.jobs, src.rain, opts))
		}
		view.Weeks = append(view.Weeks, row)
	}

	return view, nil
}

// Day composes d and forwards the click to the OnDayClick handler.
func (s *Service) Day(ctx context.Context, d caldate.Date) (*DayDetail, error) {
	src := s.gather(ctx, d, d, nil)
	cell := s.classifier.Compose(d, src.jobs, src.rain, ComposeOptions{
		Today:    s.Today(),
		Selected: d,
	})

	jobs := src.jobs.For(d)
	if jobs == nil {
		jobs = []job.ScheduledJob{}
	}

	if s.handlers.OnDayClick != nil {
		if err := s.handlers.OnDayClick(ctx, d, jobs); err != nil {
			return nil, fmt.Errorf("day click handler: %w", err)
		}
	}

	return &DayDetail{Cell: cell, Jobs: jobs}, nil
}

// Drop forwards a drop on d to the OnDrop handler.
func (s *Service) Drop(ctx context.Context, event DropEvent, d caldate.Date) error {
	if s.handlers.OnDrop == nil {
		s.logger.Debug().Str("date", d.Key()).Msg("drop ignored, no handler")
		return nil
	}
	return s.handlers.OnDrop(ctx, event, d)
}

// Export writes the month containing req.Anchor as an .xlsx schedule.
func (s *Service) Export(ctx context.Context, w io.Writer, req ViewRequest) error {
	req.Compact = false
	view, err := s.Month(ctx, req)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, view)
}
