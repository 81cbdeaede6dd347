// Package request provides request identity middleware. Every request gets a
// correlation ID that follows it through logs and audit events.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"votegate/pkg/requestcontext"
)

// HeaderRequestID is the inbound/outbound header carrying the correlation ID.
const HeaderRequestID = "X-Request-Id"

// ID assigns a request ID to each request, honoring one supplied by a
// trusted upstream proxy, and echoes it on the response.
func ID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
