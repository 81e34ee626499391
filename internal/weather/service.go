package weather

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tradeease/tradeease/internal/notify"
	"github.com/tradeease/tradeease/internal/telemetry"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// ForecastProvider fetches daily forecasts.
type ForecastProvider interface {
	// GetForecast fetches up to days of daily forecast starting today.
	GetForecast(ctx context.Context, lat, lon float64, days int) ([]ForecastDay, error)

	// Name returns the provider name for logging.
	Name() string
}

// AlertProvider fetches active weather alerts.
type AlertProvider interface {
	GetWeatherAlerts(ctx context.Context, lat, lon float64) ([]Alert, error)
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Forecast is the daily forecast provider.
	Forecast ForecastProvider

	// Alerts is the optional alert provider.
	Alerts AlertProvider

	// Notifier receives a warning for each new severe or extreme alert.
	Notifier notify.Notifier

	// Metrics records provider calls. Optional.
	Metrics *telemetry.ProviderMetrics

	// Days of forecast to request (default: 14).
	Days int

	// RefreshInterval between refreshes in Run (default: 30 minutes).
	RefreshInterval time.Duration

	// Location decides what "today" is for the fallback forecast
	// (default: UTC).
	Location *time.Location

	// Now overrides the clock in tests.
	Now func() time.Time

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service keeps one forecast snapshot per site.
type Service struct {
	forecast        ForecastProvider
	alerts          AlertProvider
	notifier        notify.Notifier
	metrics         *telemetry.ProviderMetrics
	days            int
	refreshInterval time.Duration
	loc             *time.Location
	now             func() time.Time
	logger          zerolog.Logger

	inflight singleflight.Group

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	loading   map[string]bool
	notified  map[string]struct{}
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	days := cfg.Days
	if days <= 0 {
		days = 14
	}

	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Minute
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
		forecast:        cfg.Forecast,
		alerts:          cfg.Alerts,
		notifier:        cfg.Notifier,
		metrics:         cfg.Metrics,
		days:            days,
		refreshInterval: interval,
		loc:             loc,
		now:             now,
		logger:          cfg.Logger,
		snapshots:       make(map[string]*Snapshot),
		loading:         make(map[string]bool),
		notified:        make(map[string]struct{}),
	}
}

// RefreshInterval returns the configured refresh interval.
func (s *Service) RefreshInterval() time.Duration {
	return s.refreshInterval
}

// Refresh fetches the forecast and alerts for site in parallel and replaces
// the site's snapshot. A forecast failure installs the fallback forecast
// instead of returning an error; the only error is for invalid coordinates.
// Concurrent refreshes of one site share a single provider round trip.
func (s *Service) Refresh(ctx context.Context, site Site) (*Snapshot, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	key := site.Key()
	v, _, _ := s.inflight.Do(key, func() (interface{}, error) {
		return s.refresh(ctx, site, key), nil
	})
	return v.(*Snapshot), nil
}

func (s *Service) refresh(ctx context.Context, site Site, key string) *Snapshot {
	s.mu.Lock()
	s.loading[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.loading, key)
		s.mu.Unlock()
	}()

	var (
		wg          sync.WaitGroup
		alerts      []Alert
		alertErr    error
		forecast    []ForecastDay
		forecastErr error
	)

	if s.alerts != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			alerts, alertErr = s.fetchAlerts(ctx, site)
		}()
	}

	forecast, forecastErr = s.fetchForecast(ctx, site)
	wg.Wait()

	fallback := false
	if forecastErr != nil || len(forecast) == 0 {
		s.logger.Warn().Err(forecastErr).
			Str("site", site.Name).
			Float64("lat", site.Lat).
			Float64("lon", site.Lon).
			Msg("forecast unavailable, using fallback forecast")
		s.metrics.RecordFallback(s.forecastName(), "forecast")
		forecast = FallbackForecast(caldate.FromTime(s.now().In(s.loc)))
		fallback = true
	}

	snap := newSnapshot(site, forecast)
	snap.Fallback = fallback
	snap.Provider = s.forecastName()
	snap.LastUpdate = s.now()
	snap.Alerts = alerts
	if snap.Alerts == nil {
		snap.Alerts = []Alert{}
	}
	if alertErr != nil {
		snap.AlertError = alertErr.Error()
	}

	s.mu.Lock()
	s.snapshots[key] = snap
	s.mu.Unlock()

	s.notifyAlerts(ctx, site, alerts)

	s.logger.Debug().
		Str("site", site.Name).
		Int("days", len(snap.Days)).
		Int("alerts", len(snap.Alerts)).
		Bool("fallback", fallback).
		Msg("weather refreshed")

	return snap
}

// Snapshot returns the latest snapshot for site, or nil if it has never
// been refreshed. Loading reports whether a refresh is in flight.
func (s *Service) Snapshot(site Site) *Snapshot {
	key := site.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[key]
	if !ok {
		return nil
	}
	if s.loading[key] {
		cp := *snap
		cp.Loading = true
		return &cp
	}
	return snap
}

// Forecast returns the site's snapshot, refreshing it when it is missing or
// older than the refresh interval.
func (s *Service) Forecast(ctx context.Context, site Site) (*Snapshot, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	if snap := s.Snapshot(site); snap != nil && s.now().Sub(snap.LastUpdate) < s.refreshInterval {
		s.metrics.RecordCacheHit(s.forecastName(), "forecast")
		return snap, nil
	}
	s.metrics.RecordCacheMiss(s.forecastName(), "forecast")

	return s.Refresh(ctx, site)
}

// Alerts returns active alerts for a location straight from the provider.
func (s *Service) Alerts(ctx context.Context, lat, lon float64) ([]Alert, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if s.alerts == nil {
		return []Alert{}, nil
	}
	return s.fetchAlerts(ctx, Site{Lat: lat, Lon: lon})
}

// Suitability assesses every day of the site's forecast.
func (s *Service) Suitability(ctx context.Context, site Site) ([]DayAssessment, error) {
	snap, err := s.Forecast(ctx, site)
	if err != nil {
		return nil, err
	}
	return AssessAll(snap.Forecast), nil
}

// Run refreshes site immediately and then every refresh interval until ctx
// is cancelled.
func (s *Service) Run(ctx context.Context, site Site) error {
	if _, err := s.Refresh(ctx, site); err != nil {
		return err
	}

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Str("site", site.Name).Msg("weather refresh loop stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Refresh(ctx, site); err != nil {
				return err
			}
		}
	}
}

func (s *Service) fetchForecast(ctx context.Context, site Site) ([]ForecastDay, error) {
	if s.forecast == nil {
		return nil, ErrProviderUnavailable
	}

	start := time.Now()
	days, err := s.forecast.GetForecast(ctx, site.Lat, site.Lon, s.days)
	s.metrics.RecordRequest(s.forecast.Name(), "forecast", time.Since(start), err)
	return days, err
}

func (s *Service) fetchAlerts(ctx context.Context, site Site) ([]Alert, error) {
	start := time.Now()
	alerts, err := s.alerts.GetWeatherAlerts(ctx, site.Lat, site.Lon)
	s.metrics.RecordRequest(s.alerts.Name(), "alerts", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("site", site.Name).
			Str("provider", s.alerts.Name()).
			Msg("failed to fetch weather alerts")
		return nil, err
	}
	return alerts, nil
}

// notifyAlerts sends one warning per new severe or extreme alert.
func (s *Service) notifyAlerts(ctx context.Context, site Site, alerts []Alert) {
	if s.notifier == nil {
		return
	}

	for _, a := range alerts {
		if !a.Severity.IsHigh() {
			continue
		}

		s.mu.Lock()
		_, seen := s.notified[a.ID]
		s.notified[a.ID] = struct{}{}
		s.mu.Unlock()
		if seen {
			continue
		}

		n := notify.New(notify.KindWarning, notifySeverity(a.Severity), a.Title, a.Description, s.now())
		n.Location = site.Name
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn().Err(err).
				Str("alert_id", a.ID).
				Msg("failed to send weather warning")
		}
	}
}

func (s *Service) forecastName() string {
	if s.forecast == nil {
		return "none"
	}
	return s.forecast.Name()
}

func notifySeverity(sev AlertSeverity) notify.Severity {
	switch sev {
	case AlertExtreme:
		return notify.SeverityExtreme
	case AlertSevere:
		return notify.SeveritySevere
	case AlertModerate:
		return notify.SeverityModerate
	default:
		return notify.SeverityMinor
	}
}
