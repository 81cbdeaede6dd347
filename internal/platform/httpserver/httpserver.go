// Package httpserver builds the shared http.Server for the API surface.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for this API. ReadTimeout
// leaves room for the multipart proof-image upload on /verify; everything
// else on the surface is small JSON.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
