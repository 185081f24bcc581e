// Package engine fetches page HTML for the crawler and the extract API.
// The core pipeline never touches the network itself; everything that
// does goes through the Engine interface so tests can substitute a stub.
package engine

import (
	"context"
	"time"
)

// Engine is the interface all fetch implementations satisfy.
type Engine interface {
	// Name returns the engine identifier (e.g. "http").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResult is the output of a successful fetch.
type FetchResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
	EngineName string
}
