// Package fetch obtains rendered page content for the extractors.
//
// The primary implementation calls a managed scraping API that runs the page
// in a real browser, applies the configured wait/scroll cycles so client-side
// rendering can settle, and returns the processed HTML, the raw post-render
// markup, and a markdown rendition. A direct HTTP client with a Cloudflare
// bypass transport is available as a development fallback; it cannot execute
// JavaScript, so listing pages fetched with it usually only yield embedded
// JSON and raw-markup candidates.
package fetch

import (
	"context"
	"errors"

	"github.com/partyfinder/scraper/internal/venue"
)

// ErrUnavailable reports that a page returned no content at all. Callers skip
// the page and continue the run.
var ErrUnavailable = errors.New("no page content returned")

// Result holds the representations of one fetched page. HTML is always
// attempted; RawHTML and Markdown are best-effort and may be empty.
type Result struct {
	HTML       string
	RawHTML    string
	Markdown   string
	StatusCode int
}

// Empty reports whether the fetch produced no usable page content.
func (r *Result) Empty() bool {
	return r == nil || (r.HTML == "" && r.RawHTML == "")
}

// Fetcher fetches one URL with the given settle configuration.
type Fetcher interface {
	Fetch(ctx context.Context, url string, cfg venue.FetchConfig) (*Result, error)
}
