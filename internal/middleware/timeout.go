package middleware

import (
	"net/http"
	"time"
)

// Timeout cancels the request context after d and answers 503 {"error":"timeout"} when the
// handler has not finished by then. d <= 0 disables it.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"timeout"}`)
	}
}
