// Package api provides the HTTP API of the TradeEase job calendar.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/handler"
	"github.com/tradeease/tradeease/internal/api/middleware"
	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/holiday"
	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/notify"
	"github.com/tradeease/tradeease/internal/provider/resilience"
	"github.com/tradeease/tradeease/internal/weather"
)

// RouterConfig holds configuration for the router. Route groups whose
// service is nil are not mounted.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	// Registry reports weather provider health on /ops/status.
	Registry        *resilience.Registry
	ReadinessChecks []handler.ReadinessCheck

	Calendar   *calendar.Service
	Holidays   *holiday.Service
	Weather    *weather.Service
	Jobs       *job.Service
	Dispatcher *notify.Dispatcher

	// Site is the default forecast location.
	Site weather.Site

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tradeease-api"
	}

	// Order matters: the request ID must exist before tracing and logging.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.ReadinessChecks...)

	standardRateLimit := middleware.RateLimitByTeam(middleware.StandardRateLimit)
	writeRateLimit := middleware.RateLimitByTeam(middleware.WriteRateLimit)
	exportRateLimit := middleware.RateLimitByIP(middleware.ExportRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		if cfg.Calendar != nil {
			h := handler.NewCalendarHandler(cfg.Calendar, cfg.Jobs, cfg.Logger)
			r.Route("/calendar", func(r chi.Router) {
				r.With(standardRateLimit).Get("/month", h.Month)
				r.With(standardRateLimit).Get("/month/weeks", h.Weeks)
				r.With(exportRateLimit).Get("/month/export.xlsx", h.Export)
				r.With(standardRateLimit).Get("/navigate", h.Navigate)
				r.With(standardRateLimit).Get("/days/{date}", h.Day)
				r.With(writeRateLimit, middleware.RequireJSON).Post("/days/{date}/drop", h.Drop)
				r.With(standardRateLimit).Get("/events", h.Events)
				r.With(exportRateLimit).Get("/events.ics", h.EventsICS)
			})
		}

		if cfg.Holidays != nil {
			classifier := calendar.NewClassifier(cfg.Holidays)
			if cfg.Calendar != nil {
				classifier = cfg.Calendar.Classifier()
			}
			h := handler.NewHolidayHandler(cfg.Holidays, classifier, cfg.Now, cfg.Logger)
			r.Route("/holidays", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", h.List)
				r.Get("/classify", h.Classify)
				r.With(middleware.RequireJSON).Put("/country", h.SetCountry)
			})
		}

		if cfg.Weather != nil {
			h := handler.NewWeatherHandler(cfg.Weather, cfg.Site, cfg.Logger)
			r.Route("/weather", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/forecast", h.Forecast)
				r.Get("/alerts", h.Alerts)
				r.Get("/suitability", h.Suitability)
			})
		}

		if cfg.Jobs != nil {
			h := handler.NewJobHandler(cfg.Jobs, cfg.Logger)
			r.Route("/jobs", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", h.List)
				r.With(writeRateLimit, middleware.RequireJSON).Post("/", h.Import)
				r.With(standardRateLimit).Get("/markers", h.Markers)
				r.With(standardRateLimit).Get("/{jobId}", h.Get)
			})
		}

		if cfg.Dispatcher != nil {
			h := handler.NewNotificationHandler(cfg.Dispatcher)
			r.Route("/notifications", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", h.List)
				r.With(middleware.RequireJSON).Put("/settings", h.UpdateSettings)
			})
		}
	})

	return r
}
