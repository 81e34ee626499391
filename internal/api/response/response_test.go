package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeease/tradeease/internal/api/middleware"
	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
)

// withRequestID returns a request whose context carries a request ID.
func withRequestID(t *testing.T, method, path string) *http.Request {
	t.Helper()
	var out *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		out = r
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, http.NoBody))
	require.NotNil(t, out)
	return out
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestJSON(t *testing.T) {
	req := withRequestID(t, http.MethodGet, "/v1/calendar/month")
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"title": "February 2024"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, middleware.GetRequestID(req.Context()), rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"title":"February 2024"}`, rec.Body.String())
}

func TestJSON_WithoutRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs", http.NoBody), http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
	assert.Empty(t, rec.Body.String())
}

func TestAttachment(t *testing.T) {
	req := withRequestID(t, http.MethodGet, "/v1/calendar/month/export.xlsx")
	rec := httptest.NewRecorder()

	response.Attachment(rec, req, response.ContentTypeXLSX, "schedule-2024-02.xlsx")
	_, _ = rec.Write([]byte("PK"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="schedule-2024-02.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestNoContent(t *testing.T) {
	req := withRequestID(t, http.MethodPost, "/v1/calendar/days/2024-02-29/drop")
	rec := httptest.NewRecorder()

	response.NoContent(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestInvalidField(t *testing.T) {
	req := withRequestID(t, http.MethodGet, "/v1/calendar/month")
	rec := httptest.NewRecorder()

	response.InvalidField(rec, req, "anchor", models.CodeInvalidDate, "must be YYYY-MM-DD")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	p := decodeProblem(t, rec)
	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "/v1/calendar/month", p.Instance)
	assert.Equal(t, middleware.GetRequestID(req.Context()), p.TraceID)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "anchor", p.Errors[0].Field)
	assert.Equal(t, models.CodeInvalidDate, p.Errors[0].Code)
}

func TestProblemResponses(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
		typ    string
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "job not found") }, http.StatusNotFound, models.ProblemTypeNotFound},
		{"conflict", func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "already moved") }, http.StatusConflict, models.ProblemTypeConflict},
		{"internal", func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "boom") }, http.StatusInternalServerError, models.ProblemTypeInternal},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "no jobs store") }, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
		{"too many", func(w http.ResponseWriter, r *http.Request) { response.TooManyRequests(w, r, "slow down") }, http.StatusTooManyRequests, models.ProblemTypeTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withRequestID(t, http.MethodGet, "/v1/jobs/j1")
			rec := httptest.NewRecorder()

			tt.write(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "/v1/jobs/j1", p.Instance)
		})
	}
}

func TestTooManyRequestsWithInfo(t *testing.T) {
	req := withRequestID(t, http.MethodGet, "/v1/calendar/month/export.xlsx")
	rec := httptest.NewRecorder()

	response.TooManyRequestsWithInfo(rec, req, "export limit", &response.RateLimitInfo{
		Limit:      10,
		Remaining:  0,
		ResetAt:    1709164800,
		RetryAfter: 42,
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1709164800", rec.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}
