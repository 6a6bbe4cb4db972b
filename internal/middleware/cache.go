package middleware

import (
	"net/http"
)

// NoStore defaults every response to strict no-cache headers so freshly
// deployed pages and API changes reach browsers immediately. Handlers that
// serve cacheable data (the community stats aggregate) override
// Cache-Control themselves.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
