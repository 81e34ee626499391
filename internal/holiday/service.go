package holiday

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// ServiceConfig holds configuration for the holiday service.
type ServiceConfig struct {
	// Provider computes holiday tables (default: TableProvider).
	Provider Provider

	// Country is the initial country code. Empty detects it from TimeZone.
	Country string

	// TimeZone is the IANA zone used for country detection
	// (default: the process's local zone).
	TimeZone string

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service caches holiday tables per (country, year) and answers lookups for
// the user's current country. Tables are immutable once loaded.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	timezone string

	mu      sync.RWMutex
	country string
	cache   map[string]*yearTable
}

type yearTable struct {
	holidays []calendar.PublicHoliday
	byKey    map[string]*calendar.PublicHoliday
}

// NewService creates a new holiday service.
func NewService(cfg ServiceConfig) *Service {
	provider := cfg.Provider
	if provider == nil {
		provider = NewTableProvider()
	}

	timezone := cfg.TimeZone
	if timezone == "" {
		timezone = time.Local.String()
	}

	s := &Service{
		provider: provider,
		logger:   cfg.Logger,
		timezone: timezone,
		cache:    make(map[string]*yearTable),
	}
	s.SetUserCountry(cfg.Country)
	return s
}

// SetUserCountry sets the country used for lookups and returns the effective
// code. An empty country is detected from the configured time zone. Calling
// it again with the same value changes nothing.
func (s *Service) SetUserCountry(country string) string {
	code := NormalizeCountry(country)
	if code == "" {
		code = DetectCountry(s.timezone)
	}

	s.mu.Lock()
	changed := s.country != code
	s.country = code
	s.mu.Unlock()

	if changed {
		s.logger.Info().
			Str("country", code).
			Str("timezone", s.timezone).
			Msg("holiday country set")
	}
	return code
}

// Country returns the current country code.
func (s *Service) Country() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.country
}

// Supports reports whether the provider has data for country. Providers
// that don't list their countries are assumed to support any.
func (s *Service) Supports(country string) bool {
	lister, ok := s.provider.(interface{ Countries() []string })
	if !ok {
		return true
	}
	code := NormalizeCountry(country)
	for _, c := range lister.Countries() {
		if c == code {
			return true
		}
	}
	return false
}

// Load fetches the current country's holidays for each year not yet cached.
func (s *Service) Load(ctx context.Context, years ...int) error {
	country := s.Country()
	for _, year := range years {
		if _, err := s.table(ctx, country, year); err != nil {
			return err
		}
	}
	return nil
}

// Loaded reports whether the current country's holidays for year are cached.
func (s *Service) Loaded(year int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[cacheKey(s.country, year)]
	return ok
}

// HolidayFor returns the holiday on d for the current country, or nil when
// there is none or the year hasn't been loaded.
func (s *Service) HolidayFor(d caldate.Date) *calendar.PublicHoliday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.cache[cacheKey(s.country, d.Year)]
	if !ok {
		return nil
	}
	h, ok := t.byKey[d.Key()]
	if !ok {
		return nil
	}
	cpy := *h
	return &cpy
}

// GetHolidayForDate returns the holiday on d, or nil.
func (s *Service) GetHolidayForDate(d caldate.Date) *calendar.PublicHoliday {
	return s.HolidayFor(d)
}

// IsPublicHoliday reports whether d is a loaded public holiday.
func (s *Service) IsPublicHoliday(d caldate.Date) bool {
	return s.HolidayFor(d) != nil
}

// HolidaysForYear returns the holidays of country in year, loading them if
// needed. An empty country means the current one.
func (s *Service) HolidaysForYear(ctx context.Context, year int, country string) ([]calendar.PublicHoliday, error) {
	if country == "" {
		country = s.Country()
	}
	t, err := s.table(ctx, NormalizeCountry(country), year)
	if err != nil {
		return nil, err
	}
	out := make([]calendar.PublicHoliday, len(t.holidays))
	copy(out, t.holidays)
	return out, nil
}

// HolidaysForMonth returns the holidays of country in one month.
func (s *Service) HolidaysForMonth(ctx context.Context, year int, month time.Month, country string) ([]calendar.PublicHoliday, error) {
	all, err := s.HolidaysForYear(ctx, year, country)
	if err != nil {
		return nil, err
	}
	var out []calendar.PublicHoliday
	for _, h := range all {
		if h.Date.Month == month {
			out = append(out, h)
		}
	}
	return out, nil
}

// table returns the cached table for (country, year), computing it once.
func (s *Service) table(ctx context.Context, country string, year int) (*yearTable, error) {
	key := cacheKey(country, year)

	s.mu.RLock()
	t, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	holidays, err := s.provider.Holidays(ctx, country, year)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("country", country).
			Int("year", year).
			Str("provider", s.provider.Name()).
			Msg("failed to load holidays")
		return nil, err
	}

	t = &yearTable{
		holidays: holidays,
		byKey:    make(map[string]*calendar.PublicHoliday, len(holidays)),
	}
	for i := range t.holidays {
		t.byKey[t.holidays[i].Date.Key()] = &t.holidays[i]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have won the race; keep the first table.
	if existing, ok := s.cache[key]; ok {
		return existing, nil
	}
	s.cache[key] = t

	s.logger.Debug().
		Str("country", country).
		Int("year", year).
		Int("count", len(holidays)).
		Msg("loaded holidays")

	return t, nil
}

func cacheKey(country string, year int) string {
	return fmt.Sprintf("%s-%d", country, year)
}

// Ensure Service implements calendar.HolidaySource.
var _ calendar.HolidaySource = (*Service)(nil)
