// Package auth resolves the caller of a request.
//
// TRUSTED HEADER:
// The caller identifies themselves with the X-Sharer-User-Id header, and the
// value is trusted as-is. An upstream gateway is expected to have
// authenticated the user and to set the header; this service never sees
// credentials.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// CallerHeader names the header carrying the caller's user id.
const CallerHeader = "X-Sharer-User-Id"

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of type contextKey, so only this
// package can read or write the caller id stored in the context.
type contextKey string

const callerIDKey contextKey = "callerID"

// Identify parses the caller header and stores the id in the request
// context. Requests without the header pass through anonymously; handlers
// that need a caller reject them. A header that is not a positive integer
// is rejected here with 400.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(CallerHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := ParseCallerID(raw)
		if err != nil {
			writeInvalidCaller(w, err.Error())
			return
		}

		ctx := WithCallerID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseCallerID accepts positive decimal ids only.
func ParseCallerID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &invalidCallerError{raw: raw}
	}
	return id, nil
}

type invalidCallerError struct{ raw string }

func (e *invalidCallerError) Error() string {
	return CallerHeader + " must be a positive integer, got " + strconv.Quote(e.raw)
}

// WithCallerID returns ctx carrying id as the caller.
func WithCallerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, callerIDKey, id)
}

// CallerIDFromContext returns the caller id stored by Identify.
//
// Usage in handlers:
//
//	callerID, ok := auth.CallerIDFromContext(r.Context())
//	if !ok {
//	    // the request carried no caller header
//	}
func CallerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(callerIDKey).(int64)
	return id, ok && id > 0
}

func writeInvalidCaller(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "validation_error",
		"message": message,
		"field":   CallerHeader,
	})
}
