package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// queryDate parses an optional YYYY-MM-DD query parameter. A missing value
// returns the zero date.
func queryDate(r *http.Request, name string) (caldate.Date, *models.FieldError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return caldate.Date{}, nil
	}
	d, err := caldate.Parse(v)
	if err != nil {
		return caldate.Date{}, &models.FieldError{Field: name, Message: "must be a date in YYYY-MM-DD format", Code: models.CodeInvalidDate}
	}
	return d, nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, *models.FieldError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &models.FieldError{Field: name, Message: "must be an integer", Code: models.CodeInvalidValue}
	}
	if n < lo || n > hi {
		return 0, &models.FieldError{Field: name, Message: "must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi), Code: models.CodeOutOfRange}
	}
	return n, nil
}

// querySite returns the site named by the lat and lon parameters, or def
// when both are absent.
func querySite(r *http.Request, def weather.Site) (weather.Site, []models.FieldError) {
	q := r.URL.Query()
	latStr, lonStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latStr == "" && lonStr == "" {
		return def, nil
	}

	var errs []models.FieldError
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be between -90 and 90", Code: models.CodeOutOfRange})
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be between -180 and 180", Code: models.CodeOutOfRange})
	}
	if len(errs) > 0 {
		return weather.Site{}, errs
	}

	name := strings.TrimSpace(q.Get("site"))
	return weather.Site{Name: name, Lat: lat, Lon: lon}, nil
}

// queryBool reads a boolean flag; anything but a true value is false.
func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func collect(errs ...*models.FieldError) []models.FieldError {
	var out []models.FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
