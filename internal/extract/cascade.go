package extract

import (
	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/venue"
)

// Strategy pairs an extraction function with the source it reports.
type Strategy struct {
	Source Source
	Run    ExtractFunc
}

var strategyTable = map[Source]ExtractFunc{
	SourceAnchorLabel:  AnchorLabel,
	SourceComponent:    CustomComponent,
	SourceEmbeddedJSON: EmbeddedJSON,
	SourceRawHTML:      RawMarkup,
	SourceMarkdownLink: MarkdownLink,
}

// defaultOrder is the standard extractor cascade. Downstream strategies only
// run when everything before them found nothing.
var defaultOrder = []Source{
	SourceAnchorLabel,
	SourceComponent,
	SourceEmbeddedJSON,
	SourceRawHTML,
	SourceMarkdownLink,
}

// CascadeFor resolves the extractor order for a venue, honoring its
// configured override.
func CascadeFor(v venue.Venue) []Strategy {
	order := defaultOrder
	if len(v.ExtractorOrder) > 0 {
		order = make([]Source, 0, len(v.ExtractorOrder))
		for _, name := range v.ExtractorOrder {
			if _, ok := strategyTable[Source(name)]; ok {
				order = append(order, Source(name))
			}
		}
		if len(order) == 0 {
			order = defaultOrder
		}
	}

	strategies := make([]Strategy, len(order))
	for i, src := range order {
		strategies[i] = Strategy{Source: src, Run: strategyTable[src]}
	}
	return strategies
}

// RunCascade executes the venue's extractor cascade against one fetched page
// and returns the first non-empty validated candidate set. This is a
// fallback policy, not an aggregation: later strategies exist to rescue
// pages the earlier ones cannot read, not to supplement them.
func RunCascade(v venue.Venue, page *fetch.Result, log *logger.Logger) []Candidate {
	if log == nil {
		log = logger.Default()
	}

	for _, strategy := range CascadeFor(v) {
		found := strategy.Run(v, page)
		valid := found[:0:0]
		for _, c := range found {
			if c.Valid() {
				valid = append(valid, c)
			}
		}

		log.Debug("extractor ran", logger.Fields{
			"venue":    v.Slug,
			"strategy": string(strategy.Source),
			"found":    len(found),
			"valid":    len(valid),
		})

		if len(valid) > 0 {
			return valid
		}
	}

	return nil
}
