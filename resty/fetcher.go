// Package resty provides a go-resty implementation of webnovel.Fetcher.
package resty

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/fwojciec/webnovel"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for requests.
const DefaultFetchTimeout = 15 * time.Second

var _ webnovel.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page markup with a resty client. Retries are disabled
// so that retry policy stays with the caller.
type Fetcher struct {
	client *resty.Client
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	timeout   time.Duration
	userAgent string
}

// WithTimeout sets the timeout for requests.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithUserAgent overrides the browser User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// NewFetcher creates a new resty-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	o := options{
		timeout:   DefaultFetchTimeout,
		userAgent: webnovel.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := resty.New().
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetLogger(discardLogger{}).
		SetHeader("User-Agent", o.userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Fetcher{client: client}
}

// Fetch retrieves the page at url and returns its body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", webnovel.Errorf(webnovel.ENETWORK, "fetching %s: %v", url, err)
	}
	if !resp.IsSuccess() {
		return "", webnovel.Errorf(webnovel.ENETWORK, "HTTP %d for %s", resp.StatusCode(), url)
	}

	r, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", webnovel.Errorf(webnovel.ENETWORK, "decoding %s: %v", url, err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", webnovel.Errorf(webnovel.ENETWORK, "reading %s: %v", url, err)
	}
	return string(b), nil
}

// Close is a no-op; the underlying client holds no resources needing release.
func (f *Fetcher) Close() error {
	return nil
}

type discardLogger struct{}

func (discardLogger) Errorf(string, ...any) {}
func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Debugf(string, ...any) {}
