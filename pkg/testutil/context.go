package testutil

import (
	"net/http"
	"time"

	id "votegate/pkg/domain"
	"votegate/pkg/requestcontext"
)

// WithAdminID adds an admin ID to the request context, simulating what the
// RequireAdmin middleware does for authenticated requests.
func WithAdminID(req *http.Request, adminID id.AdminID) *http.Request {
	return req.WithContext(requestcontext.WithAdminID(req.Context(), adminID))
}

// WithRequestTime pins the request-scoped clock, so window and results
// boundaries can be tested deterministically.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
