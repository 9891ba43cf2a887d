// Package pipeline ties one scrape run together: scrape, write the local
// artifact, then publish. The CLI and the API server run the same pipeline.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/partyfinder/scraper/internal/event"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/scraper"
	"github.com/partyfinder/scraper/internal/store"
)

// Publisher pushes a finished run to the external document store.
type Publisher interface {
	ReplaceScraped(ctx context.Context, records []event.Record) error
}

// Pipeline is one configured scrape-and-publish flow.
type Pipeline struct {
	Scraper   *scraper.Scraper
	Artifacts *store.Artifacts
	Sink      Publisher
	Options   scraper.RunOptions
	Log       *logger.Logger
}

// RunOnce executes the pipeline. The artifact always lands before publishing
// is attempted, so a publish failure never loses the scraped data: the run
// can be replayed from disk.
func (p *Pipeline) RunOnce(ctx context.Context) (store.RunInfo, error) {
	log := p.Log
	if log == nil {
		log = logger.Default()
	}

	result, err := p.Scraper.Run(ctx, p.Options)
	if err != nil {
		return store.RunInfo{}, fmt.Errorf("scraping: %w", err)
	}

	for slug, candidates := range result.Raw {
		if err := p.Artifacts.WriteRaw(slug, candidates); err != nil {
			log.Warn("writing raw artifact", logger.Fields{"venue": slug, "error": err.Error()})
		}
	}

	info := store.RunInfo{
		ScrapedAt: time.Now().UTC(),
		Venues:    result.Venues,
		Failures:  result.Failures,
		Records:   result.Records,
	}
	if err := p.Artifacts.WriteRecords(info); err != nil {
		return info, fmt.Errorf("writing artifact: %w", err)
	}
	log.Info("artifact written", logger.Fields{
		"dir":     p.Artifacts.Dir(),
		"records": len(info.Records),
	})

	if p.Sink != nil {
		if err := p.Sink.ReplaceScraped(ctx, info.Records); err != nil {
			return info, fmt.Errorf("publishing (artifact saved, re-run publish from disk): %w", err)
		}
	}

	return info, nil
}
