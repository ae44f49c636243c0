package web

import (
	"net/http"
	"strings"

	"github.com/evcraddock/homefront/internal/auth"
	"github.com/evcraddock/homefront/internal/logging"
)

var corsAllowHeaders = strings.Join([]string{
	"Content-Type",
	auth.HeaderAdminToken,
	logging.RequestIDHeader,
}, ", ")

// cors allows any origin. The browser extension calls from unprivileged
// page content, so the admin token is the only guard. Preflights end here
// with 204.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
