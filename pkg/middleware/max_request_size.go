package middleware

import "net/http"

// MaxRequestSize caps request bodies. Oversized bodies fail inside the
// handler's json decode with http.MaxBytesError, which surfaces as a 400.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
