package httpclient

import (
	"net/http"
	"time"

	"github.com/ternarybob/ilansync/internal/common"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// identityTransport stamps every request with the configured browser-like
// identity headers before delegating to the underlying transport.
type identityTransport struct {
	base           http.RoundTripper
	userAgent      string
	acceptLanguage string
}

// RoundTrip implements http.RoundTripper
func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	}
	if t.acceptLanguage != "" && req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", t.acceptLanguage)
	}
	return t.base.RoundTrip(req)
}

// NewScrapeClient creates an HTTP client configured with the fetcher's
// request identity and timeout. Every scrape request goes through one of
// these.
func NewScrapeClient(config common.FetcherConfig) *http.Client {
	return &http.Client{
		Timeout: config.RequestTimeout,
		Transport: &identityTransport{
			base:           http.DefaultTransport,
			userAgent:      config.UserAgent,
			acceptLanguage: config.AcceptLanguage,
		},
	}
}
