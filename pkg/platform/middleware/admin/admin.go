// Package admin guards administrator-only routes. Every admin request
// carries an expiring bearer token that is verified per call.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	id "votegate/pkg/domain"
	request "votegate/pkg/platform/middleware/request"
	"votegate/pkg/requestcontext"
)

// TokenVerifier validates an admin session token and yields the acting admin.
type TokenVerifier interface {
	VerifySessionToken(token string) (id.AdminID, error)
}

// RequireAdmin rejects requests without a valid admin bearer token and
// injects the admin ID into the request context for audit attribution.
func RequireAdmin(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				logger.WarnContext(ctx, "admin request without bearer token",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				unauthorized(w)
				return
			}

			adminID, err := verifier.VerifySessionToken(token)
			if err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
					"error", err,
				)
				unauthorized(w)
				return
			}

			ctx = requestcontext.WithAdminID(ctx, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin session required"}`))
}
