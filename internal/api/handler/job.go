package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
	"github.com/tradeease/tradeease/internal/job"
)

// JobHandler serves scheduled jobs and their map markers.
type JobHandler struct {
	jobs   *job.Service
	logger zerolog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs *job.Service, logger zerolog.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// List handles GET /v1/jobs?from=&to=. Without a range every job is listed.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	from, fromErr := queryDate(r, "from")
	to, toErr := queryDate(r, "to")
	if errs := collect(fromErr, toErr); len(errs) > 0 {
		response.BadRequest(w, r, "invalid job range", errs)
		return
	}

	var (
		jobs []job.ScheduledJob
		err  error
	)
	switch {
	case from.IsZero() && to.IsZero():
		jobs, err = h.jobs.List(r.Context())
	case from.IsZero() || to.IsZero():
		response.BadRequest(w, r, "from and to must be given together", nil)
		return
	case to.Before(from):
		response.InvalidField(w, r, "to", models.CodeOutOfRange, "must not be before from")
		return
	default:
		jobs, err = h.jobs.ListRange(r.Context(), from, to)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list jobs")
		response.ServiceUnavailable(w, r, "job store unavailable")
		return
	}
	if jobs == nil {
		jobs = []job.ScheduledJob{}
	}

	list := models.JobList{Jobs: jobs, Count: len(jobs)}
	if !from.IsZero() {
		list.From, list.To = from.Key(), to.Key()
	}
	response.JSON(w, r, http.StatusOK, list)
}

// Get handles GET /v1/jobs/{jobId}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			response.NotFound(w, r, "job not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to get job")
		response.ServiceUnavailable(w, r, "job store unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, j)
}

// Import handles POST /v1/jobs with a JSON array of jobs. Nothing is stored
// when any job is invalid.
func (h *JobHandler) Import(w http.ResponseWriter, r *http.Request) {
	var jobs []job.ScheduledJob
	if err := json.NewDecoder(r.Body).Decode(&jobs); err != nil {
		response.BadRequest(w, r, "body must be a JSON array of jobs", nil)
		return
	}

	if err := h.jobs.Import(r.Context(), jobs); err != nil {
		var verr *job.ValidationError
		if errors.As(err, &verr) {
			fields := make([]models.FieldError, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, models.FieldError{Field: f.Field, Message: f.Message, Code: models.CodeInvalidValue})
			}
			response.BadRequest(w, r, verr.Error(), fields)
			return
		}
		h.logger.Error().Err(err).Msg("failed to import jobs")
		response.ServiceUnavailable(w, r, "job store unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, models.JobList{Jobs: jobs, Count: len(jobs)})
}

// Markers handles GET /v1/jobs/markers.
func (h *JobHandler) Markers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.jobs.Markers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build markers")
		response.ServiceUnavailable(w, r, "job store unavailable")
		return
	}
	if markers == nil {
		markers = []job.Marker{}
	}
	response.JSON(w, r, http.StatusOK, models.MarkerList{Markers: markers})
}
