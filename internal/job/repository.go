package job

import (
	"context"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// Repository defines the interface for scheduled job persistence.
type Repository interface {
	// Get retrieves a job by ID.
	Get(ctx context.Context, id string) (*ScheduledJob, error)

	// ListByDateRange retrieves jobs whose stored date key falls between
	// from and to inclusive. Rows with malformed keys outside the range are
	// not returned; the caller still indexes defensively.
	ListByDateRange(ctx context.Context, from, to caldate.Date) ([]ScheduledJob, error)

	// List retrieves every job.
	List(ctx context.Context) ([]ScheduledJob, error)

	// Save inserts or replaces a job.
	Save(ctx context.Context, job *ScheduledJob) error

	// UpdateDate moves a job to another day.
	// Returns ErrJobNotFound if the job doesn't exist.
	UpdateDate(ctx context.Context, id string, date caldate.Date) error
}
