// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tradeease/tradeease/internal/database"
	"github.com/tradeease/tradeease/internal/notify"
	"github.com/tradeease/tradeease/internal/weather"
)

// ErrInvalidConfig is returned when a variable is set to an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the configuration shared by the API server and the worker.
type Config struct {
	Port         string
	Env          string
	OTelEnabled  bool
	OTLPEndpoint string
	// OTelSampleRatio is the fraction of traces kept (default: all).
	OTelSampleRatio float64

	// RequireTLS rejects plain-HTTP requests (default: on in production).
	RequireTLS bool

	Database database.Config

	// OWMAPIKey enables the OpenWeatherMap forecast. Without it every
	// refresh serves the fallback forecast.
	OWMAPIKey    string
	NWSUserAgent string

	// Site is the default forecast location.
	Site weather.Site

	// Timezone decides "today" and, when HolidayCountry is empty, the
	// holiday country.
	Timezone       string
	HolidayCountry string

	ForecastDays           int
	WeatherRefreshInterval time.Duration

	PubSubProjectID    string
	PubSubSubscription string
	PubSubNotifyTopic  string

	SlackBotToken     string
	SlackAlertChannel string

	Notifications notify.Settings

	WorkerConcurrency int
}

// Load reads the given .env files (default ".env"), then the environment.
// Missing files are skipped; variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Env:                getEnvOrDefault("APP_ENV", "development"),
		OTelEnabled:        os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Database:           database.ConfigFromEnv(),
		OWMAPIKey:          os.Getenv("OWM_API_KEY"),
		NWSUserAgent:       os.Getenv("NWS_USER_AGENT"),
		Timezone:           getEnvOrDefault("APP_TIMEZONE", "Australia/Brisbane"),
		HolidayCountry:     os.Getenv("HOLIDAY_COUNTRY"),
		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: getEnvOrDefault("PUBSUB_SUBSCRIPTION", "weather-refresh"),
		PubSubNotifyTopic:  os.Getenv("PUBSUB_NOTIFY_TOPIC"),
		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackAlertChannel:  getEnvOrDefault("SLACK_ALERT_CHANNEL", "#site-weather"),
	}

	var err error
	cfg.Site.Name = getEnvOrDefault("DEFAULT_SITE_NAME", "Gold Coast")
	if cfg.Site.Lat, err = floatEnv("DEFAULT_LAT", -28.0167); err != nil {
		return nil, err
	}
	if cfg.Site.Lon, err = floatEnv("DEFAULT_LON", 153.4); err != nil {
		return nil, err
	}
	if err := cfg.Site.Validate(); err != nil {
		return nil, fmt.Errorf("%w: default site: %w", ErrInvalidConfig, err)
	}

	if cfg.OTelSampleRatio, err = floatEnv("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		return nil, err
	}
	if cfg.OTelSampleRatio < 0 || cfg.OTelSampleRatio > 1 {
		return nil, fmt.Errorf("%w: OTEL_TRACES_SAMPLER_ARG must be between 0 and 1", ErrInvalidConfig)
	}

	if cfg.RequireTLS, err = boolEnv("REQUIRE_TLS", cfg.IsProduction()); err != nil {
		return nil, err
	}

	if cfg.ForecastDays, err = intEnv("FORECAST_DAYS", 14); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency, err = intEnv("WORKER_CONCURRENCY", 3); err != nil {
		return nil, err
	}
	if cfg.WeatherRefreshInterval, err = durationEnv("WEATHER_REFRESH_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}

	if cfg.Notifications, err = notificationSettings(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: APP_TIMEZONE %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

func notificationSettings() (notify.Settings, error) {
	s := notify.DefaultSettings()

	var err error
	if s.Enabled, err = boolEnv("NOTIFY_ENABLED", s.Enabled); err != nil {
		return s, err
	}

	if v := os.Getenv("NOTIFY_SEVERITIES"); v != "" {
		s.SeverityFilter = nil
		for _, part := range strings.Split(v, ",") {
			sev := notify.Severity(strings.ToLower(strings.TrimSpace(part)))
			switch sev {
			case notify.SeverityExtreme, notify.SeveritySevere, notify.SeverityModerate, notify.SeverityMinor:
				s.SeverityFilter = append(s.SeverityFilter, sev)
			case "":
			default:
				return s, fmt.Errorf("%w: NOTIFY_SEVERITIES contains %q", ErrInvalidConfig, part)
			}
		}
	}

	if s.WorkingHoursOnly, err = boolEnv("NOTIFY_WORKING_HOURS_ONLY", s.WorkingHoursOnly); err != nil {
		return s, err
	}
	if s.WeekendsIncluded, err = boolEnv("NOTIFY_WEEKENDS_INCLUDED", s.WeekendsIncluded); err != nil {
		return s, err
	}

	return s, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidConfig, key, v)
	}
	return n, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false, got %q", ErrInvalidConfig, key, v)
	}
	return b, nil
}

func floatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidConfig, key, v)
	}
	return f, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive duration, got %q", ErrInvalidConfig, key, v)
	}
	return d, nil
}
