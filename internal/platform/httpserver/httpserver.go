package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. There is no write timeout: a demo run holds its
// response open until the pipeline reaches a terminal event.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
