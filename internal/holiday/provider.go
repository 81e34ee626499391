// Package holiday provides public holiday tables per country and year, and
// the session-scoped holiday service the calendar classifier reads.
package holiday

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"

	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// Holiday errors.
var (
	ErrUnsupportedCountry = errors.New("no holiday data for country")
	ErrInvalidYear        = errors.New("invalid year")
)

// Supported country codes.
const (
	CountryUS = "US"
	CountryAU = "AU"
	CountryUK = "UK"
	CountryCA = "CA"
)

// Provider defines the interface for holiday table sources.
type Provider interface {
	// Holidays returns the holidays of country in year, ordered by date.
	Holidays(ctx context.Context, country string, year int) ([]calendar.PublicHoliday, error)

	// Name returns the provider name for logging.
	Name() string
}

// TableProvider computes national holidays from the rickar/cal rule tables,
// so movable feasts are correct for any year.
type TableProvider struct {
	tables map[string][]*cal.Holiday
}

// NewTableProvider creates a provider with the built-in national tables.
func NewTableProvider() *TableProvider {
	return &TableProvider{
		tables: map[string][]*cal.Holiday{
			CountryUS: {
				us.NewYear,
				us.MlkDay,
				us.PresidentsDay,
				us.MemorialDay,
				us.Juneteenth,
				us.IndependenceDay,
				us.LaborDay,
				us.ColumbusDay,
				us.VeteransDay,
				us.ThanksgivingDay,
				us.ChristmasDay,
			},
			CountryAU: {
				au.NewYear,
				au.AustraliaDay,
				au.GoodFriday,
				au.EasterMonday,
				au.AnzacDay,
				au.ChristmasDay,
				au.BoxingDay,
			},
			CountryUK: {
				gb.NewYear,
				gb.GoodFriday,
				gb.EasterMonday,
				gb.EarlyMay,
				gb.SpringHoliday,
				gb.SummerHoliday,
				gb.ChristmasDay,
				gb.BoxingDay,
			},
			CountryCA: {
				ca.NewYear,
				ca.GoodFriday,
				ca.VictoriaDay,
				ca.CanadaDay,
				ca.LabourDay,
				ca.ThanksgivingDay,
				ca.ChristmasDay,
				ca.BoxingDay,
			},
		},
	}
}

// Name returns the provider name.
func (p *TableProvider) Name() string {
	return "rickar-cal"
}

// Countries returns the supported country codes.
func (p *TableProvider) Countries() []string {
	out := make([]string, 0, len(p.tables))
	for c := range p.tables {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Holidays computes the holidays of country in year. When a holiday's
// observed date differs from its actual date, the observed day is listed
// too, unless another holiday already falls on it.
func (p *TableProvider) Holidays(_ context.Context, country string, year int) ([]calendar.PublicHoliday, error) {
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	code := NormalizeCountry(country)
	table, ok := p.tables[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCountry, country)
	}

	taken := make(map[string]bool, len(table)*2)
	var holidays []calendar.PublicHoliday
	var observed []calendar.PublicHoliday

	for _, h := range table {
		actual, obs := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		d := caldate.FromTime(actual)
		if taken[d.Key()] {
			continue
		}
		taken[d.Key()] = true
		holidays = append(holidays, calendar.PublicHoliday{Date: d, Name: h.Name, Country: code})

		if obs.IsZero() {
			continue
		}
		if od := caldate.FromTime(obs); od.Year == year && !od.Equal(d) {
			observed = append(observed, calendar.PublicHoliday{
				Date:    od,
				Name:    h.Name + " (observed)",
				Country: code,
			})
		}
	}

	for _, h := range observed {
		if taken[h.Date.Key()] {
			continue
		}
		taken[h.Date.Key()] = true
		holidays = append(holidays, h)
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays, nil
}

// NormalizeCountry upper-cases a country code and maps GB to UK.
func NormalizeCountry(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if c == "GB" {
		return CountryUK
	}
	return c
}

// DetectCountry guesses the user's country from an IANA time zone name.
// American zones map to the US except Toronto and Vancouver (Canada); London
// maps to the UK; Australian zones to Australia. Anything else falls back to
// the US.
func DetectCountry(timezone string) string {
	switch {
	case strings.Contains(timezone, "America"):
		if strings.Contains(timezone, "Toronto") || strings.Contains(timezone, "Vancouver") {
			return CountryCA
		}
		return CountryUS
	case strings.Contains(timezone, "Europe/London"):
		return CountryUK
	case strings.Contains(timezone, "Australia"):
		return CountryAU
	default:
		return CountryUS
	}
}

// Ensure TableProvider implements Provider interface.
var _ Provider = (*TableProvider)(nil)
