package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	corsAllowHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization"
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
)

// Cors sets CORS headers for the allowed origins and answers preflight requests.
// Requests from other origins are still served, only without CORS headers.
func Cors(origins []string) func(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if allowedOrigins[origin] {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
					w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
					w.Header().Add("Vary", "Origin")
				} else {
					log.Debugf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Allow", corsAllowMethods)
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
