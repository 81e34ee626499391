package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/tradeease/tradeease/internal/api/models"
)

// TeamHeader identifies the crew a shared device is signed in as.
const TeamHeader = "X-Team-Id"

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Rate limits per endpoint category.
var (
	// ExportRateLimit applies to spreadsheet and calendar feed exports (10 req/min).
	ExportRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// WriteRateLimit applies to drops and reschedules (30 req/min).
	WriteRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit applies to calendar, weather and holiday reads (100 req/min).
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP (as extracted by chi's RealIP).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// RateLimitByTeam limits by client IP and, when the X-Team-Id header is
// set, also by team, so a crew sharing several tablets shares one budget.
// The header is not authenticated, so the IP budget always applies.
func RateLimitByTeam(cfg RateLimitConfig) func(http.Handler) http.Handler {
	byIP := RateLimitByIP(cfg)
	byTeam := httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByTeam),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)

	return func(next http.Handler) http.Handler {
		teamLimited := byTeam(next)
		return byIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if teamName(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			teamLimited.ServeHTTP(w, r)
		}))
	}
}

func teamName(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.Header.Get(TeamHeader)))
}

func keyByTeam(r *http.Request) (string, error) {
	return "team:" + teamName(r), nil
}

// rateLimitExceededHandler writes a problem response. httprate does not
// expose the window reset, so Retry-After is the full window.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	w.Header().Set("Retry-After", strconv.Itoa(60))
	problem.Write(w)
}
