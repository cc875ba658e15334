package webnovel

import "context"

// Fetcher retrieves the markup of a page.
type Fetcher interface {
	// Fetch performs a single GET and returns the response body.
	// Timeouts, DNS failures and non-2xx statuses return ENETWORK.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// DefaultUserAgent is sent by fetchers unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// RateLimiter controls request rates on a per-domain basis.
type RateLimiter interface {
	// Wait blocks until a request to the domain may proceed,
	// or returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
