// Package job provides the scheduled-job records the calendar reads, their
// date index and their persistence.
package job

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// Job errors.
var (
	ErrJobNotFound = errors.New("job not found")
	ErrInvalidJob  = errors.New("invalid job")
)

// ScheduledJob is the subset of a job record the calendar needs.
// Date holds the stored date key as-is; it may be empty or malformed and is
// only interpreted through ScheduledDate.
type ScheduledJob struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	JobNumber string    `json:"jobNumber"`
	Customer  string    `json:"customer"`
	Type      string    `json:"type"`
	Location  *Location `json:"location,omitempty"`
	Team      string    `json:"team,omitempty"`
	Status    string    `json:"status,omitempty"`
	Address   string    `json:"address,omitempty"`
}

// Location is a job site coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ScheduledDate parses the job's date key.
func (j ScheduledJob) ScheduledDate() (caldate.Date, error) {
	if strings.TrimSpace(j.Date) == "" {
		return caldate.Date{}, fmt.Errorf("%w: job %s has no date", caldate.ErrInvalidDate, j.ID)
	}
	return caldate.Parse(j.Date)
}

// FieldError describes one failed field check.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field errors for a job entering from outside.
type ValidationError struct {
	JobID  string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("invalid job %q: %s", e.JobID, strings.Join(parts, "; "))
}

// Unwrap lets callers match ErrInvalidJob.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidJob
}

// Validate checks the structural fields of a job. An unparseable date is
// not a validation failure: such jobs are accepted and simply never appear
// on a calendar day.
func (j ScheduledJob) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(j.ID) == "" {
		fields = append(fields, FieldError{Field: "id", Message: "is required"})
	}
	if loc := j.Location; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 {
			fields = append(fields, FieldError{Field: "location.lat", Message: "must be between -90 and 90"})
		}
		if loc.Lon < -180 || loc.Lon > 180 {
			fields = append(fields, FieldError{Field: "location.lon", Message: "must be between -180 and 180"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{JobID: j.ID, Fields: fields}
	}
	return nil
}

// ValidateAll validates every job and returns the first failure.
func ValidateAll(jobs []ScheduledJob) error {
	for _, j := range jobs {
		if err := j.Validate(); err != nil {
			return err
		}
	}
	return nil
}
