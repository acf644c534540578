package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
// writeTimeout must cover the slowest full batch.
func New(addr string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// BatchWriteTimeout bounds a response for a batch of size entities resolved
// by workers goroutines, each entity waiting at most slowestCall.
func BatchWriteTimeout(size, workers int, slowestCall time.Duration) time.Duration {
	if workers <= 0 {
		workers = 1
	}
	rounds := (size + workers - 1) / workers
	if rounds < 1 {
		rounds = 1
	}
	return time.Duration(rounds)*slowestCall + 10*time.Second
}
