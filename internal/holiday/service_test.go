package holiday_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/holiday"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// mockProvider counts calls and serves a fixed table.
type mockProvider struct {
	mu       sync.Mutex
	calls    int
	holidays []calendar.PublicHoliday
	err      error
}

func (m *mockProvider) Holidays(_ context.Context, country string, year int) ([]calendar.PublicHoliday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []calendar.PublicHoliday
	for _, h := range m.holidays {
		if h.Date.Year == year {
			h.Country = country
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockProvider) Name() string { return "mock" }

func TestTableProvider_MovableFeasts(t *testing.T) {
	p := holiday.NewTableProvider()
	ctx := context.Background()

	tests := []struct {
		country string
		year    int
		date    string
	}{
		// Good Friday moves with Easter.
		{holiday.CountryAU, 2024, "2024-03-29"},
		{holiday.CountryAU, 2025, "2025-04-18"},
		{holiday.CountryUK, 2024, "2024-03-29"},
		// Thanksgiving is the fourth Thursday of November.
		{holiday.CountryUS, 2024, "2024-11-28"},
		{holiday.CountryUS, 2025, "2025-11-27"},
		// Fixed dates.
		{holiday.CountryAU, 2026, "2026-04-25"},
		{holiday.CountryCA, 2024, "2024-07-01"},
	}

	for _, tt := range tests {
		t.Run(tt.country+"/"+tt.date, func(t *testing.T) {
			holidays, err := p.Holidays(ctx, tt.country, tt.year)
			require.NoError(t, err)

			found := false
			for _, h := range holidays {
				assert.Equal(t, tt.year, h.Date.Year)
				if h.Date.Key() == tt.date {
					found = true
				}
			}
			assert.True(t, found, "expected a holiday on %s", tt.date)
		})
	}
}

func TestTableProvider_SortedAndUnique(t *testing.T) {
	holidays, err := holiday.NewTableProvider().Holidays(context.Background(), "us", 2021)
	require.NoError(t, err)
	require.NotEmpty(t, holidays)

	seen := make(map[string]bool)
	for i, h := range holidays {
		assert.Equal(t, holiday.CountryUS, h.Country)
		assert.False(t, seen[h.Date.Key()], "duplicate holiday on %s", h.Date)
		seen[h.Date.Key()] = true
		if i > 0 {
			assert.False(t, h.Date.Before(holidays[i-1].Date))
		}
	}
}

func TestTableProvider_Errors(t *testing.T) {
	p := holiday.NewTableProvider()

	_, err := p.Holidays(context.Background(), "ZZ", 2024)
	assert.ErrorIs(t, err, holiday.ErrUnsupportedCountry)

	_, err = p.Holidays(context.Background(), "US", 0)
	assert.ErrorIs(t, err, holiday.ErrInvalidYear)

	assert.Equal(t, []string{"AU", "CA", "UK", "US"}, p.Countries())
}

func TestDetectCountry(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"America/New_York", "US"},
		{"America/Toronto", "CA"},
		{"America/Vancouver", "CA"},
		{"Europe/London", "UK"},
		{"Australia/Brisbane", "AU"},
		{"Asia/Tokyo", "US"},
		{"", "US"},
	}

	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			assert.Equal(t, tt.want, holiday.DetectCountry(tt.tz))
		})
	}
}

func TestService_SetUserCountry(t *testing.T) {
	svc := holiday.NewService(holiday.ServiceConfig{
		TimeZone: "Australia/Sydney",
		Logger:   zerolog.Nop(),
	})
	assert.Equal(t, "AU", svc.Country())

	assert.Equal(t, "UK", svc.SetUserCountry("gb"))
	assert.Equal(t, "UK", svc.SetUserCountry("UK"))
	assert.Equal(t, "AU", svc.SetUserCountry(""))
}

func TestService_Supports(t *testing.T) {
	svc := holiday.NewService(holiday.ServiceConfig{Country: "AU", Logger: zerolog.Nop()})
	assert.True(t, svc.Supports("au"))
	assert.True(t, svc.Supports("GB"))
	assert.False(t, svc.Supports("NZ"))

	custom := holiday.NewService(holiday.ServiceConfig{Provider: &mockProvider{}, Country: "NZ", Logger: zerolog.Nop()})
	assert.True(t, custom.Supports("NZ"), "providers without a country list accept any country")
}

func TestService_LoadAndLookup(t *testing.T) {
	provider := &mockProvider{
		holidays: []calendar.PublicHoliday{
			{Date: caldate.MustParse("2024-12-25"), Name: "Christmas Day"},
			{Date: caldate.MustParse("2025-01-01"), Name: "New Year's Day"},
		},
	}
	svc := holiday.NewService(holiday.ServiceConfig{
		Provider: provider,
		Country:  "AU",
		Logger:   zerolog.Nop(),
	})
	ctx := context.Background()
	christmas := caldate.MustParse("2024-12-25")

	// Not loaded yet: no holiday, no error.
	assert.False(t, svc.Loaded(2024))
	assert.False(t, svc.IsPublicHoliday(christmas))
	assert.Nil(t, svc.GetHolidayForDate(christmas))

	require.NoError(t, svc.Load(ctx, 2024, 2024))
	assert.Equal(t, 1, provider.calls, "a loaded year is cached")
	assert.True(t, svc.Loaded(2024))
	assert.False(t, svc.Loaded(2025))

	h := svc.GetHolidayForDate(christmas)
	require.NotNil(t, h)
	assert.Equal(t, "Christmas Day", h.Name)
	assert.Equal(t, "AU", h.Country)
	assert.False(t, svc.IsPublicHoliday(caldate.MustParse("2024-12-24")))

	dec, err := svc.HolidaysForMonth(ctx, 2024, time.December, "")
	require.NoError(t, err)
	assert.Len(t, dec, 1)

	nov, err := svc.HolidaysForMonth(ctx, 2024, time.November, "")
	require.NoError(t, err)
	assert.Empty(t, nov)
}

func TestService_ProviderFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	svc := holiday.NewService(holiday.ServiceConfig{Provider: provider, Country: "US", Logger: zerolog.Nop()})

	require.Error(t, svc.Load(context.Background(), 2024))
	assert.False(t, svc.Loaded(2024))
	assert.Nil(t, svc.HolidayFor(caldate.MustParse("2024-12-25")))
}

func TestService_ClassifierIntegration(t *testing.T) {
	svc := holiday.NewService(holiday.ServiceConfig{Country: "US", Logger: zerolog.Nop()})
	classifier := calendar.NewClassifier(svc)

	// Christmas 2021 fell on a Saturday.
	christmas := caldate.MustParse("2021-12-25")
	assert.Equal(t, calendar.DayTypeWeekend, classifier.Classify(christmas), "degrades before load")

	require.NoError(t, svc.Load(context.Background(), 2021))
	assert.Equal(t, calendar.DayTypeHoliday, classifier.Classify(christmas))
	assert.Equal(t, calendar.DayTypeWeekend, classifier.Classify(caldate.MustParse("2021-12-26")))
}
