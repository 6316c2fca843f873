package handlers

import (
	"log/slog"
	"net/http"

	csrf "filippo.io/csrf/gorilla"
)

// CSRF protects cookie-authenticated mutations. The check relies on Fetch
// metadata headers, so non-browser clients without them pass through.
// trustedOrigins are host-only values such as "localhost:8080".
func CSRF(authKey []byte, trustedOrigins []string, logger *slog.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			logger.Warn("CSRF validation failed",
				"reason", reason,
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"CSRF validation failed"}`))
		})),
	}
	if len(trustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(trustedOrigins))
	}
	return csrf.Protect(authKey, opts...)
}
