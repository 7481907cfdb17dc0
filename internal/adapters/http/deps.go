package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/snippetmap/internal/core/ports"
)

// Dependencies holds everything the HTTP handlers need. Store is only set
// for the stub backend; NATS and Cache are optional.
type Dependencies struct {
	Store ports.SnippetStore
	NATS  *nats.Conn
	Cache ports.FeedCache

	FeedPath     string
	SnippetsPath string
	CSRFCookie   string
	CSRFHeader   string
	// FeedCacheTTL is in seconds; zero means 30.
	FeedCacheTTL int
}

func (d *Dependencies) csrfCookie() string {
	if d.CSRFCookie == "" {
		return "csrftoken"
	}
	return d.CSRFCookie
}

func (d *Dependencies) csrfHeader() string {
	if d.CSRFHeader == "" {
		return "X-CSRFToken"
	}
	return d.CSRFHeader
}

func (d *Dependencies) feedCacheTTL() int {
	if d.FeedCacheTTL <= 0 {
		return 30
	}
	return d.FeedCacheTTL
}
