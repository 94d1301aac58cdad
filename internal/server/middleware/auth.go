package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Auth guards the analytics API with a static key, accepted either as a
// Bearer token or in the X-API-Key header. An empty configured key disables
// the check, which is the expected setup for local dashboards.
func Auth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			presented := presentedKey(r)
			if presented == "" {
				rejectUnauthorized(w, "missing authentication token")
				return
			}
			// Constant-time compare; the key is a shared secret.
			if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
				rejectUnauthorized(w, "invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey pulls the client's key from Authorization: Bearer or
// X-API-Key, in that order.
func presentedKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, rest, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func rejectUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
