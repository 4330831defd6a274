package middleware

import (
	"net/http"
	"time"
)

// HTTPRecorder receives one observation per finished request.
type HTTPRecorder interface {
	RecordHTTP(method string, statusCode int, duration time.Duration)
}

// Metrics reports the status and latency of every request to rec.
func Metrics(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			rec.RecordHTTP(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
