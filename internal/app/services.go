// Package app wires the services shared by the API server and the worker.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/handler"
	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/config"
	"github.com/tradeease/tradeease/internal/database"
	"github.com/tradeease/tradeease/internal/holiday"
	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/notify"
	"github.com/tradeease/tradeease/internal/provider/resilience"
	"github.com/tradeease/tradeease/internal/telemetry"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/internal/weather/nws"
	"github.com/tradeease/tradeease/internal/weather/openweathermap"
)

// ErrUnknownDriver is returned for a DB_DRIVER other than postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// Services holds the wired domain services.
type Services struct {
	Registry   *resilience.Registry
	Jobs       *job.Service
	Holidays   *holiday.Service
	Weather    *weather.Service
	Calendar   *calendar.Service
	Dispatcher *notify.Dispatcher

	// Ping checks the job store.
	Ping func(ctx context.Context) error

	closers []func() error
	logger  zerolog.Logger
}

// NewServices connects the job store and builds every service from cfg.
// metrics may be nil.
func NewServices(ctx context.Context, cfg *config.Config, metrics *telemetry.ProviderMetrics, logger zerolog.Logger) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Services{
		Registry: resilience.NewRegistry(),
		logger:   logger,
	}

	repo, err := s.openJobStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s.Jobs = job.NewService(job.ServiceConfig{
		Repository: repo,
		Logger:     logger.With().Str("component", "jobs").Logger(),
	})

	s.Dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
		Notifiers: s.notifiers(ctx, cfg),
		Settings:  &cfg.Notifications,
		Location:  loc,
		Logger:    logger.With().Str("component", "notify").Logger(),
	})

	s.Weather = weather.NewService(weather.ServiceConfig{
		Forecast:        s.forecastProvider(cfg),
		Alerts:          s.alertProvider(cfg),
		Notifier:        s.Dispatcher,
		Metrics:         metrics,
		Days:            cfg.ForecastDays,
		RefreshInterval: cfg.WeatherRefreshInterval,
		Location:        loc,
		Logger:          logger.With().Str("component", "weather").Logger(),
	})

	s.Holidays = holiday.NewService(holiday.ServiceConfig{
		Country:  cfg.HolidayCountry,
		TimeZone: cfg.Timezone,
		Logger:   logger.With().Str("component", "holidays").Logger(),
	})

	calLogger := logger.With().Str("component", "calendar").Logger()
	s.Calendar = calendar.NewService(calendar.ServiceConfig{
		Classifier: calendar.NewClassifier(s.Holidays),
		Holidays:   s.Holidays,
		Jobs:       s.Jobs,
		Weather:    s.Weather,
		Site:       cfg.Site,
		Handlers: calendar.Handlers{
			OnDayClick: handler.LogDayClick(calLogger),
			OnDrop:     handler.RescheduleOnDrop(s.Jobs),
		},
		Location: loc,
		Logger:   calLogger,
	})

	logger.Info().
		Str("holiday_country", s.Holidays.Country()).
		Str("site", cfg.Site.Name).
		Str("timezone", cfg.Timezone).
		Msg("services initialized")

	return s, nil
}

func (s *Services) openJobStore(ctx context.Context, cfg database.Config) (job.Repository, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		s.addCloser(func() error { pool.Close(); return nil })
		s.Ping = pool.Ping
		s.logger.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Str("database", cfg.Database).
			Msg("database connected")
		return job.NewPostgresRepository(pool), nil

	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		s.addCloser(db.Close)
		s.Ping = db.PingContext
		s.logger.Info().Str("path", cfg.SQLitePath).Msg("database opened")
		return job.NewSQLiteRepository(db), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func (s *Services) forecastProvider(cfg *config.Config) weather.ForecastProvider {
	if cfg.OWMAPIKey == "" {
		s.logger.Warn().Msg("OWM_API_KEY not set, serving the fallback forecast")
		return nil
	}

	client := s.clientConfig(openweathermap.ProviderName)
	return openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     cfg.OWMAPIKey,
		HTTPClient: resilience.NewClient(client),
		Logger:     s.logger.With().Str("provider", openweathermap.ProviderName).Logger(),
	})
}

// clientConfig registers the provider for /v1/ops/status and logs its
// circuit transitions.
func (s *Services) clientConfig(name string) resilience.ClientConfig {
	logger := s.logger.With().Str("provider", name).Logger()

	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = s.Registry
	cfg.Logger = logger
	cfg.CircuitBreaker.OnStateChange = resilience.LogStateChange(logger)
	return cfg
}

// alertProvider enables weather.gov alerts when a contact User-Agent is
// configured. weather.gov only covers US sites.
func (s *Services) alertProvider(cfg *config.Config) weather.AlertProvider {
	if cfg.NWSUserAgent == "" {
		return nil
	}

	client := s.clientConfig(nws.ProviderName)
	client.Headers = map[string]string{"User-Agent": cfg.NWSUserAgent}
	return nws.NewClient(nws.ClientConfig{
		UserAgent:  cfg.NWSUserAgent,
		HTTPClient: resilience.NewClient(client),
		Logger:     s.logger.With().Str("provider", nws.ProviderName).Logger(),
	})
}

// notifiers always logs, and adds Slack and Pub/Sub when configured.
func (s *Services) notifiers(ctx context.Context, cfg *config.Config) []notify.Notifier {
	notifiers := []notify.Notifier{notify.LogNotifier{Logger: s.logger.With().Str("component", "alerts").Logger()}}

	if cfg.SlackBotToken != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackAlertChannel))
		s.logger.Info().Str("channel", cfg.SlackAlertChannel).Msg("slack alerts enabled")
	}

	if cfg.PubSubProjectID != "" && cfg.PubSubNotifyTopic != "" {
		pub, err := notify.NewPubSubNotifier(ctx, notify.PubSubNotifierConfig{
			ProjectID: cfg.PubSubProjectID,
			TopicID:   cfg.PubSubNotifyTopic,
			Logger:    s.logger,
		})
		if err != nil {
			// Alerts still reach the log and Slack.
			s.logger.Error().Err(err).Msg("pubsub notifier unavailable")
		} else {
			notifiers = append(notifiers, pub)
			s.addCloser(pub.Close)
			s.logger.Info().Str("topic", cfg.PubSubNotifyTopic).Msg("pubsub alerts enabled")
		}
	}

	return notifiers
}

// ReadinessChecks returns the checks for /v1/ops/ready.
func (s *Services) ReadinessChecks() []handler.ReadinessCheck {
	if s.Ping == nil {
		return nil
	}
	return []handler.ReadinessCheck{{Name: "database", Check: s.Ping}}
}

func (s *Services) addCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases connections in reverse order of opening.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
