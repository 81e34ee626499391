// Package nws implements the weather alert provider on the US National
// Weather Service active-alerts API.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/provider/resilience"
	"github.com/tradeease/tradeease/internal/weather"
)

const (
	// ProviderName identifies this alert provider.
	ProviderName = "nws"

	// DefaultBaseURL is the weather.gov API base URL.
	DefaultBaseURL = "https://api.weather.gov"

	// DefaultUserAgent identifies the service to weather.gov, which rejects
	// anonymous requests.
	DefaultUserAgent = "TradeEase/1.0 (ops@tradeease.app)"
)

// ClientConfig holds configuration for the NWS client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to weather.gov).
	BaseURL string

	// UserAgent is sent with every request (optional).
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client carrying the User-Agent header.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a weather.gov alerts client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new NWS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Headers = map[string]string{"User-Agent": userAgent}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetWeatherAlerts fetches active alerts covering a point. weather.gov only
// covers US territory; other points are rejected with a 400.
func (c *Client) GetWeatherAlerts(ctx context.Context, lat, lon float64) ([]weather.Alert, error) {
	url := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var alertResp alertResponse
	if err := json.NewDecoder(resp.Body).Decode(&alertResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	alerts := make([]weather.Alert, 0, len(alertResp.Features))
	for _, f := range alertResp.Features {
		alerts = append(alerts, toAlert(f.Properties))
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("alerts", len(alerts)).
		Msg("fetched weather alerts")

	return alerts, nil
}

func toAlert(p alertProperties) weather.Alert {
	title := p.Headline
	if title == "" {
		title = p.Event
	}

	end := parseTime(p.Ends)
	if end.IsZero() {
		end = parseTime(p.Expires)
	}

	return weather.Alert{
		ID:          p.ID,
		Event:       p.Event,
		Title:       title,
		Description: p.Description,
		Severity:    mapSeverity(p.Severity),
		Area:        p.AreaDesc,
		StartTime:   parseTime(p.Onset),
		EndTime:     end,
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// mapSeverity maps the CAP severity to the domain severity.
func mapSeverity(s string) weather.AlertSeverity {
	switch strings.ToLower(s) {
	case "extreme":
		return weather.AlertExtreme
	case "severe":
		return weather.AlertSevere
	case "moderate":
		return weather.AlertModerate
	case "minor":
		return weather.AlertMinor
	default:
		return weather.AlertUnknown
	}
}

var _ weather.AlertProvider = (*Client)(nil)

// weather.gov API response structures.

type alertResponse struct {
	Features []struct {
		Properties alertProperties `json:"properties"`
	} `json:"features"`
}

type alertProperties struct {
	ID          string `json:"id"`
	AreaDesc    string `json:"areaDesc"`
	Onset       string `json:"onset"`
	Expires     string `json:"expires"`
	Ends        string `json:"ends"`
	Severity    string `json:"severity"`
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}
