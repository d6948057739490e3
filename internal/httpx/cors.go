package httpx

import (
	"net/http"
	"strings"
)

// CORS lets browser clients on other origins call the JSON API.
type CORS struct {
	AllowOrigin  string
	AllowMethods []string
}

func (c CORS) Wrap(next http.Handler) http.Handler {
	origin := c.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	methods := "GET,POST,OPTIONS"
	if len(c.AllowMethods) > 0 {
		methods = strings.Join(c.AllowMethods, ",")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}

		// Preflight
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
