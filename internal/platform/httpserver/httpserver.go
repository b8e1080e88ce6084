// Package httpserver builds the http.Server that fronts the dossier API.
package httpserver

import (
	"net/http"
	"time"
)

// New wraps the router in a server with a bounded header read, so a stalled
// client cannot pin a search-handling goroutine before the request even
// parses. Request deadlines themselves live with the search orchestrator.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
