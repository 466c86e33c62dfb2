package http_client

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// newClient builds the client shared by every http sink execution so that
// concurrent jobs reuse connections.
func newClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
