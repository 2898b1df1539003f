package crawler

import (
	"context"
	"fmt"

	"apdados/internal/models"
)

// Fetch stages reported by FetchError.
const (
	StageRequest = "request"
	StageParse   = "parse"
)

// FetchError reports a failed scrape. It aborts the run.
type FetchError struct {
	URL   string
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed during %s: %v", e.URL, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client composes the scraper and the table parser.
type Client struct {
	scraper *Scraper
	parser  *Parser
}

// NewClient creates a new crawler client with default dependencies.
func NewClient() *Client {
	return &Client{
		scraper: NewScraper(),
		parser:  NewParser(),
	}
}

// NewClientWithDeps creates a new crawler client with injected dependencies.
func NewClientWithDeps(scraper *Scraper, parser *Parser) *Client {
	return &Client{
		scraper: scraper,
		parser:  parser,
	}
}

// Crawl fetches url and returns its table rows. Every failure is a *FetchError.
func (c *Client) Crawl(ctx context.Context, url string) ([]models.RawRecord, error) {
	body, err := c.scraper.Fetch(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageRequest, Err: err}
	}

	records, err := c.parser.ParseTable(body, url)
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageParse, Err: err}
	}

	return records, nil
}
