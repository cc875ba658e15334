package webnovel

import (
	"net/url"
	"strings"
)

// ParseSourceURL validates a user-supplied index URL. A missing scheme
// defaults to https. Only http and https URLs with a host are accepted.
func ParseSourceURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, InvalidFields([]string{"url"}, "url required")
	}
	if !hasScheme(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, InvalidFields([]string{"url"}, "invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, InvalidFields([]string{"url"}, "unsupported url scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, InvalidFields([]string{"url"}, "url %q has no host", raw)
	}
	if u.User != nil {
		return nil, InvalidFields([]string{"url"}, "url %q must not carry credentials", raw)
	}
	return u, nil
}

// hasScheme reports whether raw starts with a scheme. A colon in the host
// part followed only by digits is a port, as in "example.com:8080/book".
func hasScheme(raw string) bool {
	if strings.Contains(raw, "://") {
		return true
	}
	head := raw
	if i := strings.IndexAny(head, "/?#"); i >= 0 {
		head = head[:i]
	}
	i := strings.IndexByte(head, ':')
	if i < 0 {
		return false
	}
	for _, r := range head[i+1:] {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// ResolveURL resolves ref against base. When base is not an absolute URL
// or ref cannot be parsed, ref is returned unchanged.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
