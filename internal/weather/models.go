// Package weather normalizes provider forecasts into per-day rain data for
// the calendar, keeps the forecast fresh per job site and raises warnings
// for severe weather alerts.
package weather

import (
	"errors"
	"fmt"
	"time"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrMalformedForecast   = errors.New("malformed forecast payload")
)

// Condition is the normalized sky condition shown on a calendar day.
type Condition string

const (
	ConditionSunny        Condition = "sunny"
	ConditionPartlyCloudy Condition = "partly-cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionRainy        Condition = "rainy"
	ConditionStorm        Condition = "storm"
)

// Conditions is one day of provider weather.
type Conditions struct {
	// Temperature in Celsius (daily max).
	Temperature float64 `json:"temperature"`

	// Precipitation in mm for the day.
	Precipitation float64 `json:"precipitation"`

	// PrecipitationChance is the probability of precipitation (0-1).
	PrecipitationChance float64 `json:"precipitationChance"`

	// Condition is the provider's free-text description.
	Condition string `json:"condition"`

	Humidity   float64 `json:"humidity"`   // percent
	WindSpeed  float64 `json:"windSpeed"`  // km/h
	Visibility float64 `json:"visibility"` // km
	UVIndex    float64 `json:"uvIndex"`
}

// ForecastDay is one day of a provider forecast.
type ForecastDay struct {
	Date       caldate.Date `json:"date"`
	Conditions Conditions   `json:"conditions"`
}

// RainData is the normalized weather for one calendar date.
type RainData struct {
	Date         string    `json:"date"`
	Rainfall     float64   `json:"rainfall"`
	Temperature  int       `json:"temperature"`
	RainChance   int       `json:"rainChance"`
	HasLightning bool      `json:"hasLightning"`
	Condition    Condition `json:"condition"`
	Amount       float64   `json:"amount"`
}

// Tooltip returns the short hover text for a day, with rainfall to two
// decimals.
func (r RainData) Tooltip() string {
	text := fmt.Sprintf("%d°C, %d%% chance of rain, %.2fmm", r.Temperature, r.RainChance, r.Rainfall)
	if r.HasLightning {
		text += ", lightning"
	}
	return text
}

// AlertSeverity ranks a weather alert.
type AlertSeverity string

const (
	AlertExtreme  AlertSeverity = "extreme"
	AlertSevere   AlertSeverity = "severe"
	AlertModerate AlertSeverity = "moderate"
	AlertMinor    AlertSeverity = "minor"
	AlertUnknown  AlertSeverity = "unknown"
)

// IsHigh reports whether the severity warrants a warning notification.
func (s AlertSeverity) IsHigh() bool {
	return s == AlertExtreme || s == AlertSevere
}

// Alert is an active weather alert for a location.
type Alert struct {
	ID          string        `json:"id"`
	Event       string        `json:"event"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    AlertSeverity `json:"severity"`
	Area        string        `json:"area,omitempty"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     time.Time     `json:"endTime"`
}

// Site is a location whose forecast is tracked.
type Site struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Key identifies the site in the snapshot cache.
func (s Site) Key() string {
	return fmt.Sprintf("%.4f:%.4f", s.Lat, s.Lon)
}

// Validate checks the site's coordinates.
func (s Site) Validate() error {
	return validateCoordinates(s.Lat, s.Lon)
}

// Snapshot is the forecast state for one site. It is replaced wholesale on
// every refresh and never mutated after publication.
type Snapshot struct {
	Site       Site          `json:"site"`
	Days       []RainData    `json:"days"`
	Forecast   []ForecastDay `json:"forecast"`
	Alerts     []Alert       `json:"alerts"`
	LastUpdate time.Time     `json:"lastUpdate"`
	Loading    bool          `json:"loading"`
	Fallback   bool          `json:"fallback"`
	Provider   string        `json:"provider"`
	AlertError string        `json:"alertError,omitempty"`

	byDate map[string]RainData
}

// RainFor returns the rain data for d.
func (s *Snapshot) RainFor(d caldate.Date) (RainData, bool) {
	if s == nil {
		return RainData{}, false
	}
	r, ok := s.byDate[d.Key()]
	return r, ok
}

// Dates returns the date keys covered by the snapshot in order.
func (s *Snapshot) Dates() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Days))
	for _, d := range s.Days {
		out = append(out, d.Date)
	}
	return out
}

func newSnapshot(site Site, forecast []ForecastDay) *Snapshot {
	snap := &Snapshot{
		Site:     site,
		Forecast: forecast,
		Days:     make([]RainData, 0, len(forecast)),
		byDate:   make(map[string]RainData, len(forecast)),
	}
	for _, day := range forecast {
		r := Normalize(day)
		snap.Days = append(snap.Days, r)
		snap.byDate[r.Date] = r
	}
	return snap
}

// validateCoordinates checks if coordinates are valid.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
