package pkg

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched exactly and the token must be non-empty and contain no spaces.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}

func SetBearerToken(r *http.Request, token string) {
	r.Header.Set("Authorization", bearerPrefix+token)
}
