// Package extract turns fetched venue pages into event candidates.
//
// Several independent strategies scan the page representations for event
// references: labeled anchors, data-attributed component cards, embedded
// JSON state, raw post-render markup, and generated markdown links. Each
// produces partial, noisy candidates; the cascade runs them in a fixed order
// and the deduplicator reconciles their output into one candidate per logical
// event.
package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// Source identifies which strategy produced a candidate. It is only used to
// pick a winner when two strategies find the same event.
type Source string

const (
	SourceAnchorLabel  Source = "anchor-label"
	SourceComponent    Source = "custom-component"
	SourceEmbeddedJSON Source = "embedded-json"
	SourceRawHTML      Source = "raw-html-regex"
	SourceMarkdownLink Source = "markdown-link"
)

// priority orders sources for duplicate resolution. Higher wins.
var priority = map[Source]int{
	SourceAnchorLabel:  50,
	SourceEmbeddedJSON: 40,
	SourceRawHTML:      30,
	SourceMarkdownLink: 20,
	SourceComponent:    10,
}

// DateParts is a calendar date split into integer components.
type DateParts struct {
	Day   int
	Month int
	Year  int
}

// Candidate is one unverified event reference produced by an extraction
// strategy. Name may be a placeholder; date and schedule fields are
// best-effort.
type Candidate struct {
	URL       string
	Code      string
	Name      string
	VenueSlug string
	DateText  string
	DateParts *DateParts
	StartTime string
	EndTime   string
	MinAge    int
	ImageURL  string
	Source    Source
}

// injectionDenylist rejects URLs carrying unresolved template markers or
// JavaScript artifacts picked up by the raw-markup scan.
var injectionDenylist = []*regexp.Regexp{
	regexp.MustCompile(`\{\{`),
	regexp.MustCompile(`\}\}`),
	regexp.MustCompile(`\$\{`),
	regexp.MustCompile(`%7B`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`function\s*\(`),
	regexp.MustCompile(`=>`),
	regexp.MustCompile(`void 0`),
	regexp.MustCompile(`["'\\]`),
	regexp.MustCompile(`\s`),
}

// SuspiciousURL reports whether a URL matches any injection-denylist pattern.
func SuspiciousURL(u string) bool {
	if u == "" {
		return true
	}
	for _, re := range injectionDenylist {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// ValidCode reports whether a code satisfies the venue grammar: non-empty,
// at least 4 characters, and alphanumeric once separators are removed.
func ValidCode(code string) bool {
	stripped := strings.ReplaceAll(strings.ReplaceAll(code, "-", ""), "_", "")
	if len(stripped) < 4 {
		return false
	}
	return !nonAlnum.MatchString(stripped)
}

// Valid reports whether the candidate passes the grammar and injection
// checks. Invalid candidates are expected noise and dropped silently.
func (c Candidate) Valid() bool {
	return ValidCode(c.Code) && !SuspiciousURL(c.URL)
}

// CanonicalURL strips the query and fragment for use as a dedup key.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// absolutize resolves a possibly-relative href against the venue base URL.
func absolutize(href, baseURL string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		return baseURL + "/" + href
	}
	return baseURL + href
}

// urlPath returns the path component of an absolute or relative URL.
func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
