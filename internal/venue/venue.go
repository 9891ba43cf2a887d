// Package venue describes the venues the scraper knows about.
//
// Each venue is a plain descriptor selecting behavior by configuration rather
// than subclassing: the listing URL, the page-fetch settings, the code grammar
// its event URLs follow, the deduplication key it supports, and the extractor
// cascade to run against its listing page. The built-in table covers the four
// known venues; a YAML file can override or extend it.
package venue

import (
	"fmt"
	"os"
	"reflect"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// CodeGrammar selects how event codes are embedded in a venue's URLs.
type CodeGrammar string

const (
	// GrammarFinalSegment covers URLs of the form /events/<CODE>.
	GrammarFinalSegment CodeGrammar = "final-segment"
	// GrammarDateStamp covers slugs of the form ...-DD-MM-YYYY[extra]-<CODE>.
	GrammarDateStamp CodeGrammar = "date-stamp"
)

// DedupKey selects the venue-specific alternate deduplication key.
type DedupKey string

const (
	// KeyCode deduplicates by the stable per-event code.
	KeyCode DedupKey = "code"
	// KeyNameDate deduplicates by normalized name plus calendar date, for
	// venues whose URLs carry no stable code.
	KeyNameDate DedupKey = "name-date"
)

// ScrollStep is one scroll-then-wait cycle during a page fetch.
type ScrollStep struct {
	DirectionDown bool `yaml:"direction_down"`
	AmountPx      int  `yaml:"amount_px"`
	ThenWaitMs    int  `yaml:"then_wait_ms"`
}

// FetchConfig controls how long a page fetch waits for client-side rendering.
type FetchConfig struct {
	WaitMilliseconds int          `yaml:"wait_ms"`
	ScrollSteps      []ScrollStep `yaml:"scroll_steps"`
	OverallWaitForMs int          `yaml:"overall_wait_for_ms"`
}

// Venue is a single scraped establishment.
type Venue struct {
	Slug        string      `yaml:"slug"`
	Name        string      `yaml:"name"`
	BaseURL     string      `yaml:"base_url"`
	City        string      `yaml:"city"`
	Category    string      `yaml:"category"`
	CodeGrammar CodeGrammar `yaml:"code_grammar"`
	DedupKey    DedupKey    `yaml:"dedup_key"`
	// Retry enables one aggressive re-fetch when the first listing fetch
	// yields zero candidates. A pointer so a config file can switch it off
	// for a venue that defaults to on.
	Retry *bool `yaml:"retry"`
	// ExtractorOrder overrides the default candidate-extractor cascade.
	ExtractorOrder []string    `yaml:"extractor_order,omitempty"`
	Fetch          FetchConfig `yaml:"fetch"`
	RetryFetch     FetchConfig `yaml:"retry_fetch"`
}

// EventsURL returns the venue's event-listing page.
func (v Venue) EventsURL() string {
	return fmt.Sprintf("%s/es/%s/events", v.BaseURL, v.Slug)
}

// RetryEnabled reports whether the empty-listing retry is on.
func (v Venue) RetryEnabled() bool {
	return v.Retry != nil && *v.Retry
}

// DefaultFetchConfig waits for the initial render plus one short scroll cycle.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		WaitMilliseconds: 8000,
		ScrollSteps: []ScrollStep{
			{DirectionDown: true, AmountPx: 500, ThenWaitMs: 2000},
		},
		OverallWaitForMs: 5000,
	}
}

// AggressiveFetchConfig waits longer and scrolls deeper, for the one retry
// allowed when a listing page renders empty.
func AggressiveFetchConfig() FetchConfig {
	return FetchConfig{
		WaitMilliseconds: 10000,
		ScrollSteps: []ScrollStep{
			{DirectionDown: true, AmountPx: 1500, ThenWaitMs: 5000},
			{DirectionDown: true, AmountPx: 1500, ThenWaitMs: 5000},
		},
		OverallWaitForMs: 10000,
	}
}

// DetailFetchConfig is the settle window for event detail pages, which render
// faster than listings and need no scrolling.
func DetailFetchConfig() FetchConfig {
	return FetchConfig{WaitMilliseconds: 8000}
}

// Defaults returns the built-in venue table.
func Defaults() []Venue {
	base := "https://site.fourvenues.com"
	return []Venue{
		{
			Slug:        "luminata-disco",
			Name:        "Luminata Disco",
			BaseURL:     base,
			City:        "Murcia",
			Category:    "Discoteca",
			CodeGrammar: GrammarFinalSegment,
			DedupKey:    KeyCode,
			Fetch:       DefaultFetchConfig(),
			RetryFetch:  AggressiveFetchConfig(),
		},
		{
			Slug:        "el-club-by-odiseo",
			Name:        "El Club by Odiseo",
			BaseURL:     base,
			City:        "Murcia",
			Category:    "Discoteca",
			CodeGrammar: GrammarFinalSegment,
			DedupKey:    KeyCode,
			Fetch:       DefaultFetchConfig(),
			RetryFetch:  AggressiveFetchConfig(),
		},
		{
			Slug:        "dodo-club",
			Name:        "Dodo Club",
			BaseURL:     base,
			City:        "Murcia",
			Category:    "Discoteca",
			CodeGrammar: GrammarFinalSegment,
			DedupKey:    KeyCode,
			Retry:       boolPtr(true),
			// Dodo exposes events as component cards, not labeled anchors
			ExtractorOrder: []string{"custom-component", "anchor-label", "embedded-json", "raw-html-regex", "markdown-link"},
			Fetch:          DefaultFetchConfig(),
			RetryFetch:     AggressiveFetchConfig(),
		},
		{
			Slug:        "sala-rem",
			Name:        "Sala Rem",
			BaseURL:     base,
			City:        "Murcia",
			Category:    "Discoteca",
			CodeGrammar: GrammarDateStamp,
			DedupKey:    KeyNameDate,
			Retry:       boolPtr(true),
			Fetch: FetchConfig{
				WaitMilliseconds: 10000,
				ScrollSteps: []ScrollStep{
					{DirectionDown: true, AmountPx: 1000, ThenWaitMs: 3000},
					{DirectionDown: true, AmountPx: 1000, ThenWaitMs: 3000},
				},
				OverallWaitForMs: 8000,
			},
			RetryFetch: AggressiveFetchConfig(),
		},
	}
}

// Load reads a venue table from a YAML file. A configured venue only needs
// to name what differs: the rest merges in from the built-in entry with the
// same slug, or from a generic template for venues the table never heard of.
func Load(path string) ([]Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venue config: %w", err)
	}

	var cfg struct {
		Venues []Venue `yaml:"venues"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing venue config: %w", err)
	}
	if len(cfg.Venues) == 0 {
		return nil, fmt.Errorf("venue config %s defines no venues", path)
	}

	known := BySlug(Defaults())
	for i := range cfg.Venues {
		v := &cfg.Venues[i]
		if v.Slug == "" {
			return nil, fmt.Errorf("venue config %s: venue %d has no slug", path, i)
		}

		base, ok := known[v.Slug]
		if !ok {
			base = Venue{
				BaseURL:     "https://site.fourvenues.com",
				CodeGrammar: GrammarFinalSegment,
				DedupKey:    KeyCode,
				Fetch:       DefaultFetchConfig(),
				RetryFetch:  AggressiveFetchConfig(),
			}
		}
		if err := mergo.Merge(v, base, mergo.WithTransformers(boolPtrTransformer{})); err != nil {
			return nil, fmt.Errorf("merging venue %s: %w", v.Slug, err)
		}
	}

	return cfg.Venues, nil
}

func boolPtr(v bool) *bool {
	return &v
}

// boolPtrTransformer keeps an explicitly configured *bool, true or false,
// from being merged over by the base entry. Only a nil pointer inherits.
type boolPtrTransformer struct{}

func (boolPtrTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != reflect.TypeOf((*bool)(nil)) {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && dst.IsNil() {
			dst.Set(src)
		}
		return nil
	}
}

// BySlug indexes a venue list for lookup during deduplication and publishing.
func BySlug(venues []Venue) map[string]Venue {
	index := make(map[string]Venue, len(venues))
	for _, v := range venues {
		index[v.Slug] = v
	}
	return index
}
