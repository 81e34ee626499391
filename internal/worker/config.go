// Package worker refreshes site forecasts and holiday tables in the
// background, on a timer or when triggered over Pub/Sub.
package worker

import (
	"math"
	"time"

	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/weather"
)

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// Sites are always refreshed, in order.
	Sites []weather.Site

	// JobHorizonDays adds the sites of jobs scheduled within this many
	// days of today. Zero skips job sites.
	JobHorizonDays int

	// Concurrency is the number of concurrent site refreshes.
	// Default: 3
	Concurrency int

	// Timeout bounds each site refresh.
	// Default: 30 seconds
	Timeout time.Duration

	// HolidayYears is how many years, starting with the current one, of
	// holiday tables to preload. Zero skips holidays.
	HolidayYears int
}

// DefaultRefreshConfig returns the default refresh configuration for sites.
func DefaultRefreshConfig(sites ...weather.Site) RefreshConfig {
	return RefreshConfig{
		Sites:          sites,
		JobHorizonDays: 14,
		Concurrency:    3,
		Timeout:        30 * time.Second,
		HolidayYears:   2,
	}
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// siteGridDecimals rounds job coordinates so neighbouring jobs share one
// forecast (about 1 km).
const siteGridDecimals = 2

// JobSites derives one forecast site per distinct rounded job location.
// Jobs without a location are skipped. Sites keep the order of the first
// job at each location.
func JobSites(jobs []job.ScheduledJob) []weather.Site {
	seen := make(map[string]bool)
	var sites []weather.Site

	for _, j := range jobs {
		if j.Location == nil {
			continue
		}
		site := weather.Site{
			Name: j.Address,
			Lat:  roundTo(j.Location.Lat, siteGridDecimals),
			Lon:  roundTo(j.Location.Lon, siteGridDecimals),
		}
		if site.Name == "" {
			site.Name = j.JobNumber
		}
		if seen[site.Key()] {
			continue
		}
		seen[site.Key()] = true
		sites = append(sites, site)
	}
	return sites
}

// mergeSites appends extra to base, dropping sites whose key is already
// present.
func mergeSites(base, extra []weather.Site) []weather.Site {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]weather.Site, 0, len(base)+len(extra))
	for _, s := range append(append([]weather.Site{}, base...), extra...) {
		if seen[s.Key()] {
			continue
		}
		seen[s.Key()] = true
		out = append(out, s)
	}
	return out
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
