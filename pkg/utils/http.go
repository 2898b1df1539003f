// Package utils provides common utility functions.
package utils

import (
	"net/url"
	"strings"
)

// DefaultUserAgent mimics a desktop browser; the registry serves a reduced page to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct {
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper. An empty user agent selects DefaultUserAgent.
func NewHTTPHelper(userAgent string) *HTTPHelper {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPHelper{userAgent: userAgent}
}

// IsValidURL reports whether raw is an absolute http(s) URL.
func (h *HTTPHelper) IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates request headers with defaults, letting custom values win.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) map[string]string {
	headers := map[string]string{
		"User-Agent":      h.userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "pt-BR,pt;q=0.9,en;q=0.8",
	}

	for key, value := range customHeaders {
		headers[key] = value
	}

	return headers
}

// ResolveReference resolves ref against base, returning ref unchanged when either does not parse.
func (h *HTTPHelper) ResolveReference(base, ref string) string {
	if ref == "" || base == "" {
		return ref
	}

	b, err := url.Parse(base)
	if err != nil {
		return ref
	}

	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return b.ResolveReference(r).String()
}
