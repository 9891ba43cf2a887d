package extract

import (
	"regexp"
	"strings"

	"github.com/partyfinder/scraper/internal/venue"
)

// dateStampRe matches slugs that bury the event code behind an embedded date
// stamp: ...-DD-MM-YYYY[extra digits]-<CODE>. One venue family generates all
// its URLs this way.
var dateStampRe = regexp.MustCompile(`-{1,2}(\d{1,2})-(\d{2})-(\d{4})\d*-([A-Za-z0-9-]+)$`)

// ResolveCode maps a raw event URL to its canonical code under the venue's
// grammar. Date-stamp venues try the embedded-stamp capture first; every
// venue then falls back to the last hyphen-delimited alphanumeric segment of
// length >= 4, then a 2-segment join when the single segment is too short.
// Returns "" when no candidate satisfies the grammar; callers must discard
// the URL.
func ResolveCode(rawURL string, grammar venue.CodeGrammar) string {
	p := strings.TrimSuffix(urlPath(rawURL), "/")
	if p == "" {
		return ""
	}

	if grammar == venue.GrammarDateStamp {
		if m := dateStampRe.FindStringSubmatch(p); m != nil && ValidCode(m[4]) {
			return m[4]
		}
	}

	segment := p
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		segment = p[idx+1:]
	}
	parts := splitNonEmpty(segment, "-")
	if len(parts) == 0 {
		return ""
	}

	last := parts[len(parts)-1]
	if ValidCode(last) {
		return last
	}
	if len(parts) >= 2 {
		joined := parts[len(parts)-2] + "-" + parts[len(parts)-1]
		if ValidCode(joined) {
			return joined
		}
	}
	return ""
}

// DateFromURL extracts the embedded day/month/year stamp from an event URL,
// accepting 1-2 leading separators and trailing extra digits after the year.
func DateFromURL(rawURL string) *DateParts {
	m := dateStampRe.FindStringSubmatch(urlPath(rawURL))
	if m == nil {
		return nil
	}
	return &DateParts{
		Day:   atoi(m[1]),
		Month: atoi(m[2]),
		Year:  atoi(m[3]),
	}
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
