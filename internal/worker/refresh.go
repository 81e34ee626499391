package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/weather"
	"github.com/tradeease/tradeease/pkg/caldate"
)

// ForecastRefresher refreshes one site's forecast. *weather.Service
// satisfies it.
type ForecastRefresher interface {
	Refresh(ctx context.Context, site weather.Site) (*weather.Snapshot, error)
}

// HolidayLoader preloads holiday tables. *holiday.Service satisfies it.
type HolidayLoader interface {
	Load(ctx context.Context, years ...int) error
}

// JobLister lists jobs in a date range. *job.Service satisfies it.
type JobLister interface {
	ListRange(ctx context.Context, from, to caldate.Date) ([]job.ScheduledJob, error)
}

// RefreshJob refreshes forecasts for the configured and job sites on a
// bounded worker pool, then preloads holiday tables.
type RefreshJob struct {
	config   RefreshConfig
	weather  ForecastRefresher
	holidays HolidayLoader
	jobs     JobLister
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	FallbackRefreshes int64
	HolidayLoads      int64
	HolidayFailures   int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config   RefreshConfig
	Weather  ForecastRefresher
	Holidays HolidayLoader
	Jobs     JobLister

	// Location decides "today" for job horizons and holiday years
	// (default: UTC).
	Location *time.Location

	// Now overrides the clock in tests.
	Now func() time.Time

	Logger zerolog.Logger
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &RefreshJob{
		config:   cfg.Config.withDefaults(),
		weather:  cfg.Weather,
		holidays: cfg.Holidays,
		jobs:     cfg.Jobs,
		loc:      loc,
		now:      now,
		logger:   cfg.Logger,
		metrics:  &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalSites int
	Successful int
	Failed     int

	// Fallback counts successful refreshes that served the fallback
	// forecast because the provider failed.
	Fallback int

	HolidayYears []int
	HolidayError string

	Errors []RefreshError
}

// RefreshError is one failed site refresh.
type RefreshError struct {
	Site  weather.Site
	Error string
}

// Sites returns the configured sites plus the sites of jobs within the
// horizon. A failing job source leaves only the configured sites.
func (j *RefreshJob) Sites(ctx context.Context) []weather.Site {
	sites := j.config.Sites
	if j.jobs == nil || j.config.JobHorizonDays <= 0 {
		return mergeSites(sites, nil)
	}

	today := j.today()
	upcoming, err := j.jobs.ListRange(ctx, today, today.AddDays(j.config.JobHorizonDays))
	if err != nil {
		j.logger.Warn().Err(err).Msg("job sites unavailable, refreshing configured sites only")
		return mergeSites(sites, nil)
	}
	return mergeSites(sites, JobSites(upcoming))
}

// Run refreshes every site and preloads holidays.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	return j.run(ctx, j.Sites(ctx), true)
}

// RefreshSites refreshes only the given sites.
func (j *RefreshJob) RefreshSites(ctx context.Context, sites []weather.Site) *RefreshResult {
	return j.run(ctx, sites, false)
}

func (j *RefreshJob) run(ctx context.Context, sites []weather.Site, withHolidays bool) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:  startTime,
		TotalSites: len(sites),
	}

	j.logger.Info().
		Int("total_sites", result.TotalSites).
		Int("concurrency", j.config.Concurrency).
		Msg("starting weather refresh job")

	sitesChan := make(chan weather.Site, len(sites))
	resultsChan := make(chan siteResult, len(sites))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, sitesChan, resultsChan)
		}()
	}

	for _, s := range sites {
		sitesChan <- s
	}
	close(sitesChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for sr := range resultsChan {
		switch {
		case sr.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{Site: sr.site, Error: sr.err.Error()})
		case sr.fallback:
			result.Successful++
			result.Fallback++
		default:
			result.Successful++
		}
	}

	if withHolidays {
		result.HolidayYears, result.HolidayError = j.loadHolidays(ctx)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("fallback", result.Fallback).
		Ints("holiday_years", result.HolidayYears).
		Msg("weather refresh job completed")

	return result
}

type siteResult struct {
	site     weather.Site
	fallback bool
	err      error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, sites <-chan weather.Site, results chan<- siteResult) {
	for site := range sites {
		select {
		case <-ctx.Done():
			results <- siteResult{site: site, err: ctx.Err()}
		default:
			results <- j.refreshSite(ctx, site)
		}
	}
}

func (j *RefreshJob) refreshSite(ctx context.Context, site weather.Site) siteResult {
	if j.weather == nil {
		return siteResult{site: site}
	}

	siteCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	snap, err := j.weather.Refresh(siteCtx, site)
	if err != nil {
		j.logger.Warn().Err(err).Str("site", site.Name).Msg("site refresh failed")
		return siteResult{site: site, err: err}
	}
	return siteResult{site: site, fallback: snap != nil && snap.Fallback}
}

// loadHolidays preloads the current year and the ones after it.
func (j *RefreshJob) loadHolidays(ctx context.Context) ([]int, string) {
	if j.holidays == nil || j.config.HolidayYears <= 0 {
		return nil, ""
	}

	first := j.today().Year
	years := make([]int, 0, j.config.HolidayYears)
	for i := 0; i < j.config.HolidayYears; i++ {
		years = append(years, first+i)
	}

	if err := j.holidays.Load(ctx, years...); err != nil {
		j.logger.Warn().Err(err).Ints("years", years).Msg("holiday preload failed")
		return years, err.Error()
	}
	return years, ""
}

func (j *RefreshJob) today() caldate.Date {
	return caldate.FromTime(j.now().In(j.loc))
}

// Loop runs the job immediately and then every interval until ctx is
// cancelled.
func (j *RefreshJob) Loop(ctx context.Context, interval time.Duration) {
	j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug().Msg("refresh loop stopped")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.FallbackRefreshes += int64(result.Fallback)
	if len(result.HolidayYears) > 0 {
		if result.HolidayError == "" {
			j.metrics.HolidayLoads++
		} else {
			j.metrics.HolidayFailures++
		}
	}
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		FallbackRefreshes:   j.metrics.FallbackRefreshes,
		HolidayLoads:        j.metrics.HolidayLoads,
		HolidayFailures:     j.metrics.HolidayFailures,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"fallback_refreshes":    m.FallbackRefreshes,
		"holiday_loads":         m.HolidayLoads,
		"holiday_failures":      m.HolidayFailures,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
