package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// CalendarName titles the job calendar feed.
const CalendarName = "TradeEase Jobs"

// CalendarHandler handles the month view, its interactions and exports.
type CalendarHandler struct {
	calendar *calendar.Service
	jobs     *job.Service
	logger   zerolog.Logger
}

// NewCalendarHandler creates a new CalendarHandler. jobs may be nil, in
// which case event feeds are empty.
func NewCalendarHandler(cal *calendar.Service, jobs *job.Service, logger zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendar: cal,
		jobs:     jobs,
		logger:   logger,
	}
}

// RescheduleOnDrop returns a drop handler that moves the dropped job to the
// drop date.
func RescheduleOnDrop(jobs *job.Service) calendar.DropFunc {
	return func(ctx context.Context, event calendar.DropEvent, date caldate.Date) error {
		id := event.JobID()
		if id == "" {
			return fmt.Errorf("%w: drop carries no job id", job.ErrInvalidJob)
		}
		_, err := jobs.Reschedule(ctx, id, date)
		return err
	}
}

// LogDayClick returns a click handler that records clicks in the log.
func LogDayClick(logger zerolog.Logger) calendar.DayClickFunc {
	return func(_ context.Context, date caldate.Date, jobs []job.ScheduledJob) error {
		logger.Debug().
			Str("date", date.Key()).
			Int("jobs", len(jobs)).
			Msg("day selected")
		return nil
	}
}

// viewRequest reads the shared month view parameters.
func (h *CalendarHandler) viewRequest(r *http.Request) (calendar.ViewRequest, []models.FieldError) {
	anchor, anchorErr := queryDate(r, "anchor")
	selected, selectedErr := queryDate(r, "selected")
	today, todayErr := queryDate(r, "today")
	errs := collect(anchorErr, selectedErr, todayErr)

	req := calendar.ViewRequest{
		Anchor:    anchor,
		Selected:  selected,
		Today:     today,
		Compact:   queryBool(r, "compact"),
		TeamColor: strings.TrimSpace(r.URL.Query().Get("color")),
	}
	if team := strings.TrimSpace(r.URL.Query().Get("team")); team != "" && req.TeamColor == "" {
		req.TeamColor = job.TeamColor(team)
	}

	q := r.URL.Query()
	if q.Get("lat") != "" || q.Get("lon") != "" {
		site, siteErrs := querySite(r, weather.Site{})
		errs = append(errs, siteErrs...)
		if len(siteErrs) == 0 {
			req.Site = &site
		}
	}
	return req, errs
}

// Month handles GET /v1/calendar/month.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	req, errs := h.viewRequest(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid month request", errs)
		return
	}

	view, err := h.calendar.Month(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compose month view")
		response.InternalError(w, r, "failed to compose month view")
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// Weeks handles GET /v1/calendar/month/weeks.
func (h *CalendarHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	req, errs := h.viewRequest(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid month request", errs)
		return
	}

	view, err := h.calendar.Weeks(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compose week rows")
		response.InternalError(w, r, "failed to compose week rows")
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// Navigate handles GET /v1/calendar/navigate.
func (h *CalendarHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	anchor, anchorErr := queryDate(r, "anchor")
	if anchorErr != nil {
		response.BadRequest(w, r, "invalid navigation request", collect(anchorErr))
		return
	}

	today := h.calendar.Today()
	if anchor.IsZero() {
		anchor = today
	}

	direction := r.URL.Query().Get("direction")
	next, err := calendar.Navigate(anchor, direction, today)
	if err != nil {
		response.InvalidField(w, r, "direction", models.CodeInvalidValue, "must be next, prev or today")
		return
	}

	response.JSON(w, r, http.StatusOK, models.Navigation{
		Direction: strings.ToLower(strings.TrimSpace(direction)),
		From:      anchor.Key(),
		Anchor:    next.Key(),
		Title:     calendar.Assemble(next).Title(),
	})
}

// dateParam parses the {date} path parameter.
func dateParam(w http.ResponseWriter, r *http.Request) (caldate.Date, bool) {
	d, err := caldate.Parse(chi.URLParam(r, "date"))
	if err != nil {
		response.InvalidField(w, r, "date", models.CodeInvalidDate, "must be a date in YYYY-MM-DD format")
		return caldate.Date{}, false
	}
	return d, true
}

// Day handles GET /v1/calendar/days/{date} - a click on a day cell.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	d, ok := dateParam(w, r)
	if !ok {
		return
	}

	detail, err := h.calendar.Day(r.Context(), d)
	if err != nil {
		h.logger.Error().Err(err).Str("date", d.Key()).Msg("day click failed")
		response.InternalError(w, r, "failed to open day")
		return
	}
	response.JSON(w, r, http.StatusOK, detail)
}

// Drop handles POST /v1/calendar/days/{date}/drop - a job dropped on a day.
func (h *CalendarHandler) Drop(w http.ResponseWriter, r *http.Request) {
	d, ok := dateParam(w, r)
	if !ok {
		return
	}

	var body models.DropRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	body.JobID = strings.TrimSpace(body.JobID)
	if body.JobID == "" {
		response.InvalidField(w, r, "jobId", models.CodeRequired, "is required")
		return
	}

	err := h.calendar.Drop(r.Context(), calendar.NewDropEvent(body.JobID), d)
	switch {
	case errors.Is(err, job.ErrJobNotFound):
		response.NotFound(w, r, "job not found")
		return
	case errors.Is(err, job.ErrInvalidJob), errors.Is(err, caldate.ErrInvalidDate):
		response.BadRequest(w, r, err.Error(), nil)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("job_id", body.JobID).Str("date", d.Key()).Msg("drop failed")
		response.InternalError(w, r, "failed to handle drop")
		return
	}

	result := models.DropResult{Date: d.Key()}
	if h.jobs != nil {
		if moved, err := h.jobs.Get(r.Context(), body.JobID); err == nil {
			result.Job = moved
		}
	}
	response.JSON(w, r, http.StatusOK, result)
}

// events returns the jobs of the requested range as calendar events,
// filtered by team colour when asked. Without from and to, the range is
// the month containing anchor (default: today).
func (h *CalendarHandler) events(w http.ResponseWriter, r *http.Request) ([]job.CalendarEvent, bool) {
	from, fromErr := queryDate(r, "from")
	to, toErr := queryDate(r, "to")
	anchor, anchorErr := queryDate(r, "anchor")
	if errs := collect(fromErr, toErr, anchorErr); len(errs) > 0 {
		response.BadRequest(w, r, "invalid event range", errs)
		return nil, false
	}

	if anchor.IsZero() {
		anchor = h.calendar.Today()
	}
	if from.IsZero() {
		from = anchor.FirstOfMonth()
	}
	if to.IsZero() {
		to = from.LastOfMonth()
	}
	if to.Before(from) {
		response.InvalidField(w, r, "to", models.CodeOutOfRange, "must not be before from")
		return nil, false
	}

	if h.jobs == nil {
		return []job.CalendarEvent{}, true
	}

	jobs, err := h.jobs.ListRange(r.Context(), from, to)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list jobs for events")
		response.ServiceUnavailable(w, r, "job store unavailable")
		return nil, false
	}

	events := job.SyncEvents(nil, jobs)
	if team := strings.TrimSpace(r.URL.Query().Get("team")); team != "" {
		events = job.FilterByTeam(events, job.TeamColor(team))
	}
	if events == nil {
		events = []job.CalendarEvent{}
	}
	return events, true
}

// Events handles GET /v1/calendar/events.
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, ok := h.events(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, models.EventList{Events: events, Count: len(events)})
}

// EventsICS handles GET /v1/calendar/events.ics.
func (h *CalendarHandler) EventsICS(w http.ResponseWriter, r *http.Request) {
	events, ok := h.events(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := job.WriteICS(&buf, CalendarName, events, h.calendar.Today().Time()); err != nil {
		h.logger.Error().Err(err).Msg("failed to write calendar feed")
		response.InternalError(w, r, "failed to write calendar feed")
		return
	}

	response.Attachment(w, r, response.ContentTypeICS, "tradeease-jobs.ics")
	_, _ = w.Write(buf.Bytes())
}

// Export handles GET /v1/calendar/month/export.xlsx.
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, errs := h.viewRequest(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid export request", errs)
		return
	}
	if req.Anchor.IsZero() {
		req.Anchor = h.calendar.Today()
	}

	var buf bytes.Buffer
	if err := h.calendar.Export(r.Context(), &buf, req); err != nil {
		h.logger.Error().Err(err).Str("anchor", req.Anchor.Key()).Msg("failed to export month")
		response.InternalError(w, r, "failed to export month")
		return
	}

	filename := fmt.Sprintf("schedule-%04d-%02d.xlsx", req.Anchor.Year, int(req.Anchor.Month))
	response.Attachment(w, r, response.ContentTypeXLSX, filename)
	_, _ = w.Write(buf.Bytes())
}
