package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tradeease/tradeease/internal/api"
	"github.com/tradeease/tradeease/internal/api/handler"
	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/holiday"
	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/notify"
	"github.com/tradeease/tradeease/internal/provider/resilience"
	"github.com/tradeease/tradeease/internal/weather"
)

var testNow = time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC)

var testSite = weather.Site{Name: "Gold Coast", Lat: -28.0167, Lon: 153.4}

type testEnv struct {
	router     http.Handler
	jobs       *job.Service
	dispatcher *notify.Dispatcher
}

type routerOption func(*api.RouterConfig)

func withReadinessCheck(name string, err error) routerOption {
	return func(cfg *api.RouterConfig) {
		cfg.ReadinessChecks = append(cfg.ReadinessChecks, handler.ReadinessCheck{
			Name:  name,
			Check: func(context.Context) error { return err },
		})
	}
}

func newTestEnv(t *testing.T, opts ...routerOption) *testEnv {
	t.Helper()

	now := func() time.Time { return testNow }
	logger := zerolog.Nop()

	jobs := job.NewService(job.ServiceConfig{
		Repository: job.NewInMemoryRepository(
			job.ScheduledJob{ID: "j1", Date: "2024-04-10", Title: "Roof repair", JobNumber: "JOB-1", Customer: "Smith", Team: "Red Team", Location: &job.Location{Lat: -28.0, Lon: 153.4}},
			job.ScheduledJob{ID: "j2", Date: "2024-04-25", Title: "Deck stain", JobNumber: "JOB-2", Customer: "Jones", Team: "Blue Team"},
			job.ScheduledJob{ID: "j3", Date: "2024-05-02", Title: "Fence", JobNumber: "JOB-3", Customer: "Brown", Team: "Red Team"},
		),
		Logger: logger,
	})

	holidays := holiday.NewService(holiday.ServiceConfig{Country: "AU", Logger: logger})

	// No forecast provider: every snapshot is the fallback forecast.
	weatherSvc := weather.NewService(weather.ServiceConfig{Now: now, Logger: logger})

	cal := calendar.NewService(calendar.ServiceConfig{
		Classifier: calendar.NewClassifier(holidays),
		Holidays:   holidays,
		Jobs:       jobs,
		Weather:    weatherSvc,
		Site:       testSite,
		Handlers: calendar.Handlers{
			OnDayClick: handler.LogDayClick(logger),
			OnDrop:     handler.RescheduleOnDrop(jobs),
		},
		Now:    now,
		Logger: logger,
	})

	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{Now: now, Logger: logger})

	registry := resilience.NewRegistry()
	owm := resilience.DefaultClientConfig("openweathermap")
	owm.Registry = registry
	resilience.NewClient(owm)

	cfg := api.RouterConfig{
		Version:    "test",
		BuildTime:  "now",
		Logger:     logger,
		Registry:   registry,
		Calendar:   cal,
		Holidays:   holidays,
		Weather:    weatherSvc,
		Jobs:       jobs,
		Dispatcher: dispatcher,
		Site:       testSite,
		Now:        now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testEnv{router: api.NewRouter(cfg), jobs: jobs, dispatcher: dispatcher}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/ops/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var health models.Health
	decode(t, rec, &health)
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_Ready(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		env := newTestEnv(t, withReadinessCheck("database", nil))
		rec := env.do(t, http.MethodGet, "/v1/ops/ready", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing check", func(t *testing.T) {
		env := newTestEnv(t, withReadinessCheck("database", errors.New("connection refused")))
		rec := env.do(t, http.MethodGet, "/v1/ops/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_Status(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/ops/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	decode(t, rec, &status)
	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Providers, 1)
	assert.Equal(t, "openweathermap", status.Providers[0].Provider)
	assert.Equal(t, "closed", status.Providers[0].Circuit)
	assert.Empty(t, status.ActiveDegradationFlags)
}

func TestRouter_Status_FailingStorage(t *testing.T) {
	env := newTestEnv(t, withReadinessCheck("database", errors.New("connection refused")))

	rec := env.do(t, http.MethodGet, "/v1/ops/status", nil)
	require.Equal(t, http.StatusOK, rec.Code, "status never fails the request")

	var status models.SystemStatus
	decode(t, rec, &status)
	assert.Equal(t, models.HealthStatusDegraded, status.Status)
	assert.Equal(t, []models.DegradationFlag{models.DegradationStorage}, status.ActiveDegradationFlags)
}

func TestRouter_Month(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/month?anchor=2024-04-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var view calendar.MonthView
	decode(t, rec, &view)

	assert.Equal(t, "April 2024", view.Title)
	assert.Equal(t, "2024-04-10", view.Today)
	assert.Len(t, view.WeekdayCells, 22)
	assert.Len(t, view.WeekendCells, 8)
	assert.Equal(t, 2, view.JobCount)
	assert.True(t, view.Weather.Available)
	assert.True(t, view.Weather.Fallback)

	var holidayDates []string
	for _, h := range view.Holidays {
		holidayDates = append(holidayDates, h.Date.Key())
	}
	assert.Contains(t, holidayDates, "2024-04-01")
	assert.Contains(t, holidayDates, "2024-04-25")

	for _, c := range view.WeekdayCells {
		switch c.Date {
		case "2024-04-10":
			assert.True(t, c.IsToday)
			assert.Equal(t, calendar.StateToday, c.State)
			assert.Equal(t, 1, c.JobCount)
			assert.NotNil(t, c.Weather)
		case "2024-04-25":
			assert.Equal(t, calendar.DayTypeHoliday, c.DayType)
			assert.Equal(t, calendar.StateHasJobs, c.State)
		}
	}
}

func TestRouter_Month_Compact(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/month?anchor=2024-04-01&compact=true&team=Red%20Team", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view calendar.MonthView
	decode(t, rec, &view)

	for _, c := range view.WeekdayCells {
		if c.Date != "2024-04-10" {
			continue
		}
		require.NotNil(t, c.Compact)
		assert.Equal(t, job.TeamColor("Red Team"), c.Compact.Color)
		assert.Equal(t, "1", c.Compact.Badge)
		assert.Empty(t, c.Jobs)
	}
}

func TestRouter_Month_InvalidAnchor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/month?anchor=2024-02-30", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	decode(t, rec, &problem)
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "anchor", problem.Errors[0].Field)
}

func TestRouter_Weeks(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/month/weeks?anchor=2024-04-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view calendar.WeeksView
	decode(t, rec, &view)
	require.Len(t, view.Weeks, 5)
	assert.Equal(t, "2024-04-01", view.Weeks[0][0].Date)
	assert.Equal(t, "2024-05-05", view.Weeks[4][6].Date)
	assert.False(t, view.Weeks[4][6].InMonth)
}

func TestRouter_Navigate(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTitle string
		wantDate  string
	}{
		{"next clamps month end", "anchor=2024-01-31&direction=next", http.StatusOK, "February 2024", "2024-02-29"},
		{"prev crosses year", "anchor=2024-01-15&direction=prev", http.StatusOK, "December 2023", "2023-12-15"},
		{"today", "anchor=2023-06-01&direction=today", http.StatusOK, "April 2024", "2024-04-10"},
		{"unknown direction", "anchor=2024-01-15&direction=sideways", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/v1/calendar/navigate?"+tt.query, nil)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var nav models.Navigation
			decode(t, rec, &nav)
			assert.Equal(t, tt.wantTitle, nav.Title)
			assert.Equal(t, tt.wantDate, nav.Anchor)
		})
	}
}

func TestRouter_Day(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/days/2024-04-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail calendar.DayDetail
	decode(t, rec, &detail)
	assert.True(t, detail.Cell.IsSelected)
	require.Len(t, detail.Jobs, 1)
	assert.Equal(t, "j1", detail.Jobs[0].ID)

	rec = env.do(t, http.MethodGet, "/v1/calendar/days/not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Drop(t *testing.T) {
	t.Run("reschedules the job", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/v1/calendar/days/2024-04-12/drop", models.DropRequest{JobID: "j1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result models.DropResult
		decode(t, rec, &result)
		assert.Equal(t, "2024-04-12", result.Date)
		require.NotNil(t, result.Job)
		assert.Equal(t, "2024-04-12", result.Job.Date)

		moved, err := env.jobs.Get(context.Background(), "j1")
		require.NoError(t, err)
		assert.Equal(t, "2024-04-12", moved.Date)
	})

	t.Run("unknown job", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/v1/calendar/days/2024-04-12/drop", models.DropRequest{JobID: "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing job id", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/v1/calendar/days/2024-04-12/drop", models.DropRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var problem models.Problem
		decode(t, rec, &problem)
		require.Len(t, problem.Errors, 1)
		assert.Equal(t, "jobId", problem.Errors[0].Field)
	})
}

func TestRouter_Events(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/events?anchor=2024-04-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.EventList
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Count)

	rec = env.do(t, http.MethodGet, "/v1/calendar/events?anchor=2024-04-01&team=Blue%20Team", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = env.do(t, http.MethodGet, "/v1/calendar/events?from=2024-04-10&to=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_EventsICS(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/events.ics?anchor=2024-04-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, response.ContentTypeICS, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tradeease-jobs.ics")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Contains(t, body, "JOB-1")
	assert.Contains(t, body, "JOB-2")
	assert.NotContains(t, body, "JOB-3")
}

func TestRouter_Export(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/calendar/month/export.xlsx?anchor=2024-04-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, response.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "schedule-2024-04.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("April 2024")
	require.NoError(t, err)
	assert.Len(t, rows, 31)
}

func TestRouter_Holidays(t *testing.T) {
	env := newTestEnv(t)

	t.Run("year", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/holidays?year=2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list models.HolidayList
		decode(t, rec, &list)
		assert.Equal(t, "AU", list.Country)
		assert.Equal(t, 2024, list.Year)
		assert.NotEmpty(t, list.Holidays)
	})

	t.Run("month", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/holidays?year=2024&month=4&country=au", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list models.HolidayList
		decode(t, rec, &list)
		var dates []string
		for _, h := range list.Holidays {
			dates = append(dates, h.Date.Key())
		}
		assert.Equal(t, []string{"2024-04-01", "2024-04-25"}, dates)
	})

	t.Run("unsupported country", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/holidays?year=2024&country=ZZ", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("month out of range", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/holidays?year=2024&month=13", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_Classify(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		date string
		want calendar.DayType
	}{
		{"2024-04-25", calendar.DayTypeHoliday},
		{"2024-04-13", calendar.DayTypeWeekend},
		{"2024-04-10", calendar.DayTypeWeekday},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/v1/holidays/classify?date="+tt.date, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var got models.DayClassification
			decode(t, rec, &got)
			assert.Equal(t, tt.want, got.DayType)
			assert.Equal(t, tt.want == calendar.DayTypeHoliday, got.Holiday != nil)
		})
	}
}

func TestRouter_SetCountry(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/v1/holidays/country", map[string]string{"country": "gb"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"country":"UK"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/v1/holidays/country", map[string]string{"country": "ZZ"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WeatherForecast_Fallback(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/weather/forecast", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap weather.Snapshot
	decode(t, rec, &snap)
	assert.True(t, snap.Fallback)
	assert.Equal(t, "Gold Coast", snap.Site.Name)
	require.Len(t, snap.Days, 3)
	assert.Equal(t, "2024-04-10", snap.Days[0].Date)

	rec = env.do(t, http.MethodGet, "/v1/weather/forecast?lat=95&lon=10", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WeatherAlertsAndSuitability(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/weather/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts models.AlertList
	decode(t, rec, &alerts)
	assert.Equal(t, 0, alerts.Count)

	rec = env.do(t, http.MethodGet, "/v1/weather/suitability", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var suit models.SuitabilityList
	decode(t, rec, &suit)
	assert.True(t, suit.Fallback)
	assert.Len(t, suit.Days, 3)
}

func TestRouter_Jobs(t *testing.T) {
	env := newTestEnv(t)

	t.Run("list all", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/jobs", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list models.JobList
		decode(t, rec, &list)
		assert.Equal(t, 3, list.Count)
	})

	t.Run("list range", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/jobs?from=2024-04-01&to=2024-04-30", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list models.JobList
		decode(t, rec, &list)
		assert.Equal(t, 2, list.Count)
		assert.Equal(t, "2024-04-01", list.From)
	})

	t.Run("half a range", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/jobs?from=2024-04-01", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get unknown", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/jobs/missing", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		var problem models.Problem
		decode(t, rec, &problem)
		assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	})

	t.Run("markers", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/jobs/markers", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list models.MarkerList
		decode(t, rec, &list)
		assert.Len(t, list.Markers, 1)
	})
}

func TestRouter_ImportJobs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/jobs", []job.ScheduledJob{
		{ID: "j9", Date: "2024-04-12", Title: "Gutters", JobNumber: "JOB-9"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/jobs/j9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got job.ScheduledJob
	decode(t, rec, &got)
	assert.Equal(t, "Gutters", got.Title)

	rec = env.do(t, http.MethodPost, "/v1/jobs", []job.ScheduledJob{
		{ID: "j10", Date: "2024-04-12"},
		{ID: "", Date: "2024-04-13", Location: &job.Location{Lat: 120, Lon: 0}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	decode(t, rec, &problem)
	require.Len(t, problem.Errors, 2)
	assert.Equal(t, "id", problem.Errors[0].Field)
	assert.Equal(t, "location.lat", problem.Errors[1].Field)

	_, err := env.jobs.Get(context.Background(), "j10")
	assert.ErrorIs(t, err, job.ErrJobNotFound)
}

func TestRouter_ImportJobs_RejectsNonJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader("id,date"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_Notifications(t *testing.T) {
	env := newTestEnv(t)

	n := notify.New(notify.KindWarning, notify.SeveritySevere, "Storm warning", "Severe thunderstorms", testNow)
	require.NoError(t, env.dispatcher.Notify(context.Background(), n))

	rec := env.do(t, http.MethodGet, "/v1/notifications?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.NotificationList
	decode(t, rec, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "Storm warning", list.Notifications[0].Title)

	rec = env.do(t, http.MethodGet, "/v1/notifications?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_NotificationSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/v1/notifications/settings", notify.Settings{
		Enabled:        true,
		SeverityFilter: []notify.Severity{notify.SeverityExtreme},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []notify.Severity{notify.SeverityExtreme}, env.dispatcher.Settings().SeverityFilter)

	rec = env.do(t, http.MethodPut, "/v1/notifications/settings", map[string]interface{}{
		"enabled":        true,
		"severityFilter": []string{"apocalyptic"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/invoices", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OptionalGroups(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{Logger: zerolog.Nop()})

	req := httptest.NewRequest(http.MethodGet, "/v1/calendar/month", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
