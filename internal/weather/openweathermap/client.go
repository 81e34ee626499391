// Package openweathermap implements the daily forecast provider on the
// OpenWeatherMap One Call 3.0 API.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/provider/resilience"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/pkg/caldate"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultOneCallURL is the OpenWeatherMap OneCall API 3.0 base URL.
	DefaultOneCallURL = "https://api.openweathermap.org/data/3.0/onecall"

	// MaxDays is the longest daily forecast One Call returns.
	MaxDays = 8

	// defaultVisibilityKM stands in for visibility, which the daily
	// forecast does not carry.
	defaultVisibilityKM = 10

	msToKMH = 3.6
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// OneCallURL is the OneCall API URL (optional, defaults to OneCall 3.0).
	OneCallURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	oneCallURL string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	oneCallURL := cfg.OneCallURL
	if oneCallURL == "" {
		oneCallURL = DefaultOneCallURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		oneCallURL: oneCallURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetForecast fetches the daily forecast for a location. One Call returns at
// most MaxDays days; a longer request returns what is available.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64, days int) ([]weather.ForecastDay, error) {
	url := fmt.Sprintf("%s?lat=%.6f&lon=%.6f&appid=%s&units=metric&exclude=current,minutely,hourly,alerts",
		c.oneCallURL, lat, lon, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var owmResp oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrMalformedForecast, err)
	}

	forecast := toForecast(&owmResp)
	if days > 0 && len(forecast) > days {
		forecast = forecast[:days]
	}

	c.logger.Debug().
		Int("requested_days", days).
		Int("returned_days", len(forecast)).
		Msg("fetched daily forecast")

	return forecast, nil
}

// toForecast converts a One Call daily response to domain forecast days,
// dated in the location's own time zone.
func toForecast(resp *oneCallResponse) []weather.ForecastDay {
	offset := time.Duration(resp.TimezoneOffset) * time.Second
	out := make([]weather.ForecastDay, 0, len(resp.Daily))

	for _, d := range resp.Daily {
		local := time.Unix(d.Dt, 0).UTC().Add(offset)

		conditions := weather.Conditions{
			Temperature:         d.Temp.Max,
			Precipitation:       d.Rain + d.Snow,
			PrecipitationChance: d.Pop,
			Humidity:            d.Humidity,
			WindSpeed:           d.WindSpeed * msToKMH,
			Visibility:          defaultVisibilityKM,
			UVIndex:             d.UVI,
		}
		if len(d.Weather) > 0 {
			conditions.Condition = d.Weather[0].Description
			if conditions.Condition == "" {
				conditions.Condition = d.Weather[0].Main
			}
		}

		out = append(out, weather.ForecastDay{
			Date:       caldate.FromTime(local),
			Conditions: conditions,
		})
	}

	return out
}

var _ weather.ForecastProvider = (*Client)(nil)

// OpenWeatherMap API response structures.

type oneCallResponse struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Timezone       string  `json:"timezone"`
	TimezoneOffset int64   `json:"timezone_offset"`
	Daily          []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Day float64 `json:"day"`
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Humidity  float64 `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		WindGust  float64 `json:"wind_gust"`
		Clouds    float64 `json:"clouds"`
		Pop       float64 `json:"pop"` // Probability of precipitation
		Rain      float64 `json:"rain"`
		Snow      float64 `json:"snow"`
		UVI       float64 `json:"uvi"`
		Summary   string  `json:"summary"`
		Weather   []struct {
			ID          int    `json:"id"`
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"daily"`
}
