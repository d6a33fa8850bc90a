package middleware

import (
	"net/http"

	"pillpal-backend/internal/repository"
)

// DataSourceHeader is set to "fallback" when a response was built from fallback data
const DataSourceHeader = "X-Data-Source"

// TrackDataSource marks each request context so handlers can report fallback data
func TrackDataSource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(repository.TrackFallback(r.Context())))
	})
}
