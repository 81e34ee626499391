package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL job repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectJobColumns = `
	SELECT
		id, job_number, title, customer, job_type,
		scheduled_date, team, status, address,
		lat, lon
	FROM scheduled_jobs
`

// Get retrieves a job by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*ScheduledJob, error) {
	row := r.pool.QueryRow(ctx, selectJobColumns+` WHERE id = $1`, id)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return j, nil
}

// ListByDateRange retrieves jobs whose date key falls within [from, to].
func (r *PostgresRepository) ListByDateRange(ctx context.Context, from, to caldate.Date) ([]ScheduledJob, error) {
	query := selectJobColumns + `
		WHERE scheduled_date BETWEEN $1 AND $2
		ORDER BY scheduled_date, job_number, id
	`
	return r.list(ctx, query, from.Key(), to.Key())
}

// List retrieves every job.
func (r *PostgresRepository) List(ctx context.Context) ([]ScheduledJob, error) {
	return r.list(ctx, selectJobColumns+` ORDER BY scheduled_date, job_number, id`)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]ScheduledJob, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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
func (r *PostgresRepository) Save(ctx context.Context, j *ScheduledJob) error {
	lat, lon := locationColumns(j.Location)

	query := `
		INSERT INTO scheduled_jobs (
			id, job_number, title, customer, job_type,
			scheduled_date, team, status, address, lat, lon
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			job_number = EXCLUDED.job_number,
			title = EXCLUDED.title,
			customer = EXCLUDED.customer,
			job_type = EXCLUDED.job_type,
			scheduled_date = EXCLUDED.scheduled_date,
			team = EXCLUDED.team,
			status = EXCLUDED.status,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon
	`

	_, err := r.pool.Exec(ctx, query,
		j.ID, j.JobNumber, j.Title, j.Customer, j.Type,
		j.Date, j.Team, j.Status, j.Address, lat, lon,
	)
	return err
}

// UpdateDate moves a job to another day.
func (r *PostgresRepository) UpdateDate(ctx context.Context, id string, date caldate.Date) error {
	tag, err := r.pool.Exec(ctx, `UPDATE scheduled_jobs SET scheduled_date = $2 WHERE id = $1`, id, date.Key())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// rowScanner is satisfied by pgx.Row, pgx.Rows and *sql.Row(s).
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*ScheduledJob, error) {
	var (
		j        ScheduledJob
		lat, lon *float64
	)

	err := row.Scan(
		&j.ID,
		&j.JobNumber,
		&j.Title,
		&j.Customer,
		&j.Type,
		&j.Date,
		&j.Team,
		&j.Status,
		&j.Address,
		&lat,
		&lon,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lon != nil {
		j.Location = &Location{Lat: *lat, Lon: *lon}
	}
	return &j, nil
}

func locationColumns(loc *Location) (lat, lon *float64) {
	if loc == nil {
		return nil, nil
	}
	return &loc.Lat, &loc.Lon
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
