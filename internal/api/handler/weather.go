package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
	"github.com/tradeease/tradeease/internal/weather"
)

// WeatherHandler serves forecasts, alerts and construction suitability.
type WeatherHandler struct {
	weather *weather.Service
	site    weather.Site
	logger  zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler. site is used when a
// request names no coordinates.
func NewWeatherHandler(svc *weather.Service, site weather.Site, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		weather: svc,
		site:    site,
		logger:  logger,
	}
}

func (h *WeatherHandler) siteFor(w http.ResponseWriter, r *http.Request) (weather.Site, bool) {
	site, errs := querySite(r, h.site)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid location", errs)
		return weather.Site{}, false
	}
	return site, true
}

// Forecast handles GET /v1/weather/forecast. A provider outage still
// answers 200 with the fallback forecast flagged.
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	site, ok := h.siteFor(w, r)
	if !ok {
		return
	}

	snap, err := h.weather.Forecast(r.Context(), site)
	if err != nil {
		if errors.Is(err, weather.ErrInvalidCoordinates) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.logger.Error().Err(err).Str("site", site.Name).Msg("forecast failed")
		response.InternalError(w, r, "failed to load forecast")
		return
	}
	response.JSON(w, r, http.StatusOK, snap)
}

// Alerts handles GET /v1/weather/alerts.
func (h *WeatherHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	site, ok := h.siteFor(w, r)
	if !ok {
		return
	}

	alerts, err := h.weather.Alerts(r.Context(), site.Lat, site.Lon)
	if err != nil {
		if errors.Is(err, weather.ErrInvalidCoordinates) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.logger.Warn().Err(err).Float64("lat", site.Lat).Float64("lon", site.Lon).Msg("alerts unavailable")
		response.ServiceUnavailable(w, r, "weather alerts unavailable")
		return
	}
	if alerts == nil {
		alerts = []weather.Alert{}
	}
	response.JSON(w, r, http.StatusOK, models.AlertList{Alerts: alerts, Count: len(alerts)})
}

// Suitability handles GET /v1/weather/suitability.
func (h *WeatherHandler) Suitability(w http.ResponseWriter, r *http.Request) {
	site, ok := h.siteFor(w, r)
	if !ok {
		return
	}

	snap, err := h.weather.Forecast(r.Context(), site)
	if err != nil {
		if errors.Is(err, weather.ErrInvalidCoordinates) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.logger.Error().Err(err).Str("site", site.Name).Msg("suitability failed")
		response.InternalError(w, r, "failed to assess forecast")
		return
	}

	response.JSON(w, r, http.StatusOK, models.SuitabilityList{
		Site:     snap.Site,
		Fallback: snap.Fallback,
		Days:     weather.AssessAll(snap.Forecast),
	})
}
