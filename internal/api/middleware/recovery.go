package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/api/models"
)

// Recovery turns a handler panic into a 500 problem. The panic value and
// stack are logged with the request's method, path and team; the client
// only sees the request ID to quote when reporting it.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := GetRequestID(r.Context())
				event := log.Error().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Bytes("stack", debug.Stack())
				if team := r.Header.Get(TeamHeader); team != "" {
					event = event.Str("team", team)
				}
				event.Msg("panic recovered")

				problem := models.NewInternalError(requestID, "The calendar hit an unexpected error. Quote the request ID when reporting it.")
				problem.Instance = r.URL.Path
				problem.Write(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
