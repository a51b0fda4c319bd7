package http

import (
	"net/http"
	"strings"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// queryValue returns the sanitized query parameter key.
func queryValue(r *http.Request, key string) string {
	return sanitizeInput(r.URL.Query().Get(key))
}
