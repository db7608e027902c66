package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"twitterconnect/pkg/claims"
	"twitterconnect/pkg/session"
)

// CheckJWT rejects requests whose X-Auth-Token is missing, malformed,
// signed with another key or expired. Verified claims go into the request
// context under claims.TokenContextKey.
func CheckJWT(verifier session.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(session.Header)
			if token == "" {
				unauthorized(w)
				logger.Warn("auth", "path", r.URL.Path, "error", "missing token", "request_id", RequestID(r.Context()))
				return
			}

			c, err := verifier.Parse(token)
			if err != nil {
				unauthorized(w)
				logger.Warn("auth", "path", r.URL.Path, "error", err.Error(), "request_id", RequestID(r.Context()))
				return
			}

			setUserID(r.Context(), c.ID)
			next.ServeHTTP(w, r.WithContext(claims.NewContext(r.Context(), c)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
}
