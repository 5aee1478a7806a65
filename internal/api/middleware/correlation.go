package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const correlationKey ctxKey = iota

const correlationHeader = "X-Correlation-ID"

// CorrelationID tags every request with a correlation id so one fan-out
// or drain trigger can be traced across the request log and the
// service logs. An id supplied by the caller (the cron wrapper sends
// one per tick) is kept; otherwise a fresh UUID is minted. The id is
// echoed in the response header either way.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), correlationKey, id)))
	})
}

// GetCorrelationID returns the request's correlation id, or "" when the
// middleware was not applied.
func GetCorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationKey).(string)
	return v
}
