package dispatch

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingHTTPClient creates an HTTP client whose transport honors
// Cache-Control headers on idempotent GETs. Repeated polling of read-only
// endpoints (datasource listings in particular) benefits from this when the
// backend marks responses cacheable.
func NewCachingHTTPClient(cacheDir string, timeout time.Duration) *http.Client {
	var transport *httpcache.Transport
	if cacheDir == "" {
		transport = httpcache.NewTransport(httpcache.NewMemoryCache())
	} else {
		transport = httpcache.NewTransport(diskcache.New(cacheDir))
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
