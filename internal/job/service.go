package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// ServiceConfig holds configuration for the job service.
type ServiceConfig struct {
	// Repository stores the scheduled jobs.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service reads scheduled jobs for the calendar and applies reschedules.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new job service.
func NewService(cfg ServiceConfig) *Service {
	repo := cfg.Repository
	if repo == nil {
		repo = NewInMemoryRepository()
	}
	return &Service{
		repo:   repo,
		logger: cfg.Logger,
	}
}

// Get returns a single job.
func (s *Service) Get(ctx context.Context, id string) (*ScheduledJob, error) {
	return s.repo.Get(ctx, id)
}

// List returns every job.
func (s *Service) List(ctx context.Context) ([]ScheduledJob, error) {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// ListRange returns the jobs scheduled between from and to inclusive.
func (s *Service) ListRange(ctx context.Context, from, to caldate.Date) ([]ScheduledJob, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", caldate.ErrInvalidDate, to, from)
	}
	jobs, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing jobs %s..%s: %w", from, to, err)
	}
	return jobs, nil
}

// IndexRange loads the jobs between from and to and indexes them by date.
func (s *Service) IndexRange(ctx context.Context, from, to caldate.Date) (DateIndex, error) {
	jobs, err := s.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return IndexByDate(jobs, s.logger), nil
}

// Import validates and stores jobs. Nothing is written when any job is
// invalid.
func (s *Service) Import(ctx context.Context, jobs []ScheduledJob) error {
	if err := ValidateAll(jobs); err != nil {
		return err
	}
	for i := range jobs {
		if err := s.repo.Save(ctx, &jobs[i]); err != nil {
			return fmt.Errorf("saving job %s: %w", jobs[i].ID, err)
		}
	}
	s.logger.Info().Int("count", len(jobs)).Msg("imported jobs")
	return nil
}

// Reschedule moves a job to date and returns the updated record.
func (s *Service) Reschedule(ctx context.Context, id string, date caldate.Date) (*ScheduledJob, error) {
	if date.IsZero() {
		return nil, caldate.ErrInvalidDate
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDate(ctx, id, date); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("rescheduling job %s: %w", id, err)
	}

	s.logger.Info().
		Str("job_id", id).
		Str("from", existing.Date).
		Str("to", date.Key()).
		Msg("job rescheduled")

	existing.Date = date.Key()
	return existing, nil
}

// Markers returns map markers for every job with a location.
func (s *Service) Markers(ctx context.Context) ([]Marker, error) {
	jobs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return SpreadMarkers(jobs, DefaultSpreadRadius), nil
}
