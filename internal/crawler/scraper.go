package crawler

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"apdados/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

// Scraper errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrUnexpectedContent    = errors.New("unexpected content type")
	ErrEmptyBody            = errors.New("empty response body")
)

// Scraper performs the single page fetch. It never retries.
type Scraper struct {
	client *resty.Client
}

// NewScraper creates a scraper with the default browser headers and no timeout.
func NewScraper() *Scraper {
	return NewScraperWithConfig("", 0)
}

// NewScraperWithConfig creates a scraper with a custom user agent and timeout.
// A zero timeout leaves the HTTP client default in place.
func NewScraperWithConfig(userAgent string, timeout time.Duration) *Scraper {
	client := resty.New().
		SetHeaders(utils.NewHTTPHelper(userAgent).BuildHeaders(nil)).
		SetRetryCount(0)

	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Scraper{client: client}
}

// Fetch downloads url and returns the HTML body.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	if err := checkContent(resp.Header().Get("Content-Type"), body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkContent accepts an HTML Content-Type header as is. A missing or
// generic header falls back to sniffing the body with mimetype.
func checkContent(header string, body []byte) error {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		mediaType = ""
	}

	switch strings.ToLower(mediaType) {
	case "text/html", "application/xhtml+xml":
		return nil
	case "", "text/plain", "application/octet-stream":
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedContent, mediaType)
	}

	if mt := mimetype.Detect(body); !mt.Is("text/html") && !mt.Is("application/xhtml+xml") {
		return fmt.Errorf("%w: %s", ErrUnexpectedContent, mt.String())
	}

	return nil
}
