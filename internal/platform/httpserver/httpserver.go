// Package httpserver configures the process's HTTP listener.
package httpserver

import (
	"net/http"
	"time"
)

// New builds a server with conservative timeouts. Gateway callbacks carry
// ciphertext payloads, so the read timeout is generous relative to the
// header timeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
