// Package auth guards admin endpoints with a single shared token.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/evcraddock/homefront/internal/respond"
)

// HeaderAdminToken is the request header carrying the admin token.
const HeaderAdminToken = "x-import-admin-token"

// ValidToken reports whether presented matches secret. An empty secret
// matches nothing, so an unconfigured server rejects every request.
func ValidToken(secret, presented string) bool {
	if secret == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1
}

// RequireAdminToken is middleware that rejects requests whose
// x-import-admin-token header does not match secret with 401. The check runs
// before the body is read.
func RequireAdminToken(secret string, next http.Handler) http.Handler {
	if secret == "" {
		slog.Warn("admin token not configured; admin endpoints will reject every request")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ValidToken(secret, r.Header.Get(HeaderAdminToken)) {
			slog.Warn("admin token rejected", "path", r.URL.Path, "ip", r.RemoteAddr)
			respond.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
