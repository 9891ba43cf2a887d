package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/partyfinder/scraper/internal/detail"
	"github.com/partyfinder/scraper/internal/event"
	"github.com/partyfinder/scraper/internal/extract"
	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/tickets"
	"github.com/partyfinder/scraper/internal/venue"
)

// Scraper runs the scraping pipeline over a fixed venue table.
type Scraper struct {
	fetcher fetch.Fetcher
	venues  []venue.Venue
	log     *logger.Logger
	metrics *logger.Metrics
}

// New creates a Scraper. A nil logger falls back to the process default.
func New(fetcher fetch.Fetcher, venues []venue.Venue, log *logger.Logger) *Scraper {
	if log == nil {
		log = logger.Default()
	}
	return &Scraper{
		fetcher: fetcher,
		venues:  venues,
		log:     log,
		metrics: logger.NewMetrics(),
	}
}

// RunOptions narrows a run.
type RunOptions struct {
	// URLs restricts the run to venues whose listing URL appears in the
	// list. Empty means every configured venue.
	URLs []string
	// SkipDetails publishes listing data only, without per-event detail
	// fetches. Used for fast development runs.
	SkipDetails bool
}

// Result is the outcome of one full run.
type Result struct {
	Records  []event.Record
	Venues   int
	Failures int
	// Raw keeps each venue's pre-dedup candidates for debug artifacts.
	Raw map[string][]extract.Candidate
}

// Metrics exposes the run counters for reporting.
func (s *Scraper) Metrics() *logger.Metrics {
	return s.metrics
}

// Run scrapes every selected venue in order and returns the normalized
// records. Venue failures are logged and counted rather than aborting the
// run; an error comes back only when every selected venue failed.
func (s *Scraper) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	selected := s.selectVenues(opts.URLs)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no venues match the requested URLs")
	}

	index := venue.BySlug(s.venues)
	result := &Result{
		Venues: len(selected),
		Raw:    make(map[string][]extract.Candidate, len(selected)),
	}

	var candidates []extract.Candidate
	for _, v := range selected {
		found, err := s.scrapeVenue(ctx, v)
		if err != nil {
			result.Failures++
			s.metrics.IncrCounter("venue_failures")
			s.log.Error("venue scrape failed", logger.Fields{"venue": v.Slug}, err)
			continue
		}
		s.metrics.AddCounter("candidates_found", int64(len(found)))
		result.Raw[v.Slug] = found
		candidates = append(candidates, found...)
	}
	if result.Failures == len(selected) {
		return nil, fmt.Errorf("all %d venues failed", len(selected))
	}

	unique := extract.Deduplicate(candidates, index)
	s.log.Info("candidates deduplicated", logger.Fields{
		"collected": len(candidates),
		"unique":    len(unique),
	})

	now := time.Now()
	for _, c := range unique {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v := index[c.VenueSlug]
		e := event.FromCandidate(c)

		if !opts.SkipDetails {
			// An event whose detail page yields no content at all is
			// invalid and never published, whatever the venue.
			if !s.scrapeDetails(ctx, v, e) {
				s.metrics.IncrCounter("events_dropped_invalid")
				continue
			}
			// Codeless venues surface phantom listing entries whose
			// detail pages render but hold nothing.
			if v.DedupKey == venue.KeyNameDate && !e.HasContent() {
				s.metrics.IncrCounter("events_dropped_empty")
				s.log.Warn("event dropped, no detail content", logger.Fields{
					"venue": v.Slug,
					"name":  e.Name,
				})
				continue
			}
		}

		result.Records = append(result.Records, event.Normalize(e, v, now))
	}

	s.metrics.AddCounter("events_published", int64(len(result.Records)))
	return result, nil
}

func (s *Scraper) selectVenues(urls []string) []venue.Venue {
	if len(urls) == 0 {
		return s.venues
	}
	wanted := make(map[string]bool, len(urls))
	for _, u := range urls {
		wanted[u] = true
	}
	var selected []venue.Venue
	for _, v := range s.venues {
		if wanted[v.EventsURL()] {
			selected = append(selected, v)
		}
	}
	return selected
}

// scrapeVenue fetches one listing page and runs the extractor cascade. A
// venue that renders empty gets exactly one aggressive retry when its
// configuration allows it.
func (s *Scraper) scrapeVenue(ctx context.Context, v venue.Venue) ([]extract.Candidate, error) {
	started := time.Now()
	page, err := s.fetcher.Fetch(ctx, v.EventsURL(), v.Fetch)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	s.metrics.RecordTiming("listing_fetch", time.Since(started))

	candidates := extract.RunCascade(v, page, s.log)
	if len(candidates) == 0 && v.RetryEnabled() {
		s.log.Info("listing empty, retrying aggressively", logger.Fields{"venue": v.Slug})
		s.metrics.IncrCounter("listing_retries")

		page, err = s.fetcher.Fetch(ctx, v.EventsURL(), v.RetryFetch)
		if err != nil {
			return nil, fmt.Errorf("retry fetch: %w", err)
		}
		candidates = extract.RunCascade(v, page, s.log)
	}

	s.log.Info("venue scraped", logger.Fields{
		"venue":      v.Slug,
		"candidates": len(candidates),
	})
	return candidates, nil
}

// scrapeDetails fetches an event's own page and folds in tickets and
// enrichment. It reports false when the fetch fails or the page carries no
// content at all; such events are skipped, the run continues.
func (s *Scraper) scrapeDetails(ctx context.Context, v venue.Venue, e *event.Event) bool {
	page, err := s.fetcher.Fetch(ctx, e.URL, venue.DetailFetchConfig())
	if err != nil {
		s.metrics.IncrCounter("detail_failures")
		s.log.Warn("detail fetch failed, event skipped", logger.Fields{"url": e.URL, "error": err.Error()})
		return false
	}
	if page.Empty() {
		s.metrics.IncrCounter("detail_empty")
		s.log.Warn("detail page empty, event skipped", logger.Fields{"url": e.URL})
		return false
	}

	markup := page.RawHTML
	if markup == "" {
		markup = page.HTML
	}

	fromMarkdown := tickets.ParseMarkdown(page.Markdown, e.URL)
	fromSchema := tickets.ParseSchema(markup)
	e.Tickets = tickets.Reconcile(fromMarkdown, fromSchema)

	e.Enrich(detail.Extract(page.HTML, markup, page.Markdown, v.BaseURL, e.Name))
	return true
}
