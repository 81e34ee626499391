package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// SQLiteRepository is a SQLite implementation of Repository, used for local
// development and single-node installs.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a job repository on an opened SQLite handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves a job by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*ScheduledJob, error) {
	row := r.db.QueryRowContext(ctx, selectJobColumns+` WHERE id = ?`, id)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return j, nil
}

// ListByDateRange retrieves jobs whose date key falls within [from, to].
func (r *SQLiteRepository) ListByDateRange(ctx context.Context, from, to caldate.Date) ([]ScheduledJob, error) {
	query := selectJobColumns + `
		WHERE scheduled_date BETWEEN ? AND ?
		ORDER BY scheduled_date, job_number, id
	`
	return r.list(ctx, query, from.Key(), to.Key())
}

// List retrieves every job.
func (r *SQLiteRepository) List(ctx context.Context) ([]ScheduledJob, error) {
	return r.list(ctx, selectJobColumns+` ORDER BY scheduled_date, job_number, id`)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...interface{}) ([]ScheduledJob, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []ScheduledJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, *j)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Save inserts or replaces a job.
func (r *SQLiteRepository) Save(ctx context.Context, j *ScheduledJob) error {
	lat, lon := locationColumns(j.Location)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (
			id, job_number, title, customer, job_type,
			scheduled_date, team, status, address, lat, lon
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			job_number = excluded.job_number,
			title = excluded.title,
			customer = excluded.customer,
			job_type = excluded.job_type,
			scheduled_date = excluded.scheduled_date,
			team = excluded.team,
			status = excluded.status,
			address = excluded.address,
			lat = excluded.lat,
			lon = excluded.lon
	`,
		j.ID, j.JobNumber, j.Title, j.Customer, j.Type,
		j.Date, j.Team, j.Status, j.Address, lat, lon,
	)
	if err != nil {
		return fmt.Errorf("saving job %s: %w", j.ID, err)
	}
	return nil
}

// UpdateDate moves a job to another day.
func (r *SQLiteRepository) UpdateDate(ctx context.Context, id string, date caldate.Date) error {
	res, err := r.db.ExecContext(ctx, `UPDATE scheduled_jobs SET scheduled_date = ? WHERE id = ?`, date.Key(), id)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Ensure SQLiteRepository implements Repository interface.
var _ Repository = (*SQLiteRepository)(nil)
