package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/holiday"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// HolidayHandler serves holiday tables and day classification.
type HolidayHandler struct {
	holidays   *holiday.Service
	classifier *calendar.Classifier
	now        func() time.Time
	logger     zerolog.Logger
}

// NewHolidayHandler creates a new HolidayHandler.
func NewHolidayHandler(holidays *holiday.Service, classifier *calendar.Classifier, now func() time.Time, logger zerolog.Logger) *HolidayHandler {
	if now == nil {
		now = time.Now
	}
	return &HolidayHandler{
		holidays:   holidays,
		classifier: classifier,
		now:        now,
		logger:     logger,
	}
}

func (h *HolidayHandler) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, holiday.ErrUnsupportedCountry):
		response.InvalidField(w, r, "country", models.CodeInvalidValue, "no holiday data for this country")
	case errors.Is(err, holiday.ErrInvalidYear):
		response.InvalidField(w, r, "year", models.CodeOutOfRange, "is out of range")
	default:
		h.logger.Error().Err(err).Msg("failed to load holidays")
		response.ServiceUnavailable(w, r, "holiday data unavailable")
	}
}

// List handles GET /v1/holidays?year=&month=&country=.
func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	year, yearErr := queryInt(r, "year", h.now().Year(), 1, 9999)
	month, monthErr := queryInt(r, "month", 0, 0, 12)
	if errs := collect(yearErr, monthErr); len(errs) > 0 {
		response.BadRequest(w, r, "invalid holiday request", errs)
		return
	}

	country := holiday.NormalizeCountry(r.URL.Query().Get("country"))
	if country == "" {
		country = h.holidays.Country()
	}

	var (
		list []calendar.PublicHoliday
		err  error
	)
	if month > 0 {
		list, err = h.holidays.HolidaysForMonth(r.Context(), year, time.Month(month), country)
	} else {
		list, err = h.holidays.HolidaysForYear(r.Context(), year, country)
	}
	if err != nil {
		h.writeLoadError(w, r, err)
		return
	}
	if list == nil {
		list = []calendar.PublicHoliday{}
	}

	response.JSON(w, r, http.StatusOK, models.HolidayList{
		Country:  country,
		Year:     year,
		Month:    month,
		Holidays: list,
	})
}

// Classify handles GET /v1/holidays/classify?date= for the current country.
func (h *HolidayHandler) Classify(w http.ResponseWriter, r *http.Request) {
	d, dateErr := queryDate(r, "date")
	if dateErr != nil {
		response.BadRequest(w, r, "invalid classify request", collect(dateErr))
		return
	}
	if d.IsZero() {
		d = caldate.FromTime(h.now())
	}

	if err := h.holidays.Load(r.Context(), d.Year); err != nil {
		// Classification degrades to weekday/weekend without the table.
		h.logger.Warn().Err(err).Int("year", d.Year).Msg("classifying without holidays")
	}

	response.JSON(w, r, http.StatusOK, models.DayClassification{
		Date:    d.Key(),
		DayType: h.classifier.Classify(d),
		Country: h.holidays.Country(),
		Holiday: h.classifier.Holiday(d),
	})
}

type countryRequest struct {
	Country string `json:"country"`
}

// SetCountry handles PUT /v1/holidays/country. An empty country reverts to
// the one detected from the time zone.
func (h *HolidayHandler) SetCountry(w http.ResponseWriter, r *http.Request) {
	var body countryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	code := holiday.NormalizeCountry(body.Country)
	if code != "" && !h.holidays.Supports(code) {
		response.InvalidField(w, r, "country", models.CodeInvalidValue, "no holiday data for this country")
		return
	}

	response.JSON(w, r, http.StatusOK, countryRequest{Country: h.holidays.SetUserCountry(strings.TrimSpace(body.Country))})
}
