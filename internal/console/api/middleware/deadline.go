package middleware

import (
	"context"
	"net/http"
	"time"
)

type budgetKey struct{}

// WriteBudget replaces the server-wide write timeout with d for each request.
// Handlers that wait on an operator or make several backend calls restart
// the budget with ExtendWrite.
func WriteBudget(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), budgetKey{}, d)))
		})
	}
}

// ExtendWrite restarts the request's write budget from now. Without a budget
// it does nothing.
func ExtendWrite(w http.ResponseWriter, r *http.Request) {
	if d, ok := r.Context().Value(budgetKey{}).(time.Duration); ok {
		_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
	}
}

// HoldWrite pushes the write deadline d into the future, for handlers about
// to block on something slower than a backend call.
func HoldWrite(w http.ResponseWriter, d time.Duration) {
	_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
}
