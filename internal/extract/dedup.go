package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/partyfinder/scraper/internal/venue"
)

// Deduplicate reconciles the union of all candidates collected across venues
// into one candidate per logical event, preserving first-seen order. Three
// keys apply in sequence: the canonical URL, then the venue's alternate key
// (code, or normalized name plus date for venues without a stable code).
// When two extractor sources find the same event, the higher-priority source
// wins without changing the event's position.
func Deduplicate(candidates []Candidate, venues map[string]venue.Venue) []Candidate {
	return deduplicateAt(candidates, venues, time.Now())
}

func deduplicateAt(candidates []Candidate, venues map[string]venue.Venue, now time.Time) []Candidate {
	var kept []Candidate
	byKey := make(map[string]int)
	// name+date collisions need a time comparison, so they track all
	// candidates sharing the base key instead of a single slot.
	byNameDate := make(map[string][]int)

	for _, c := range candidates {
		keys := []string{"url|" + CanonicalURL(c.URL)}

		mode := venue.KeyCode
		if v, ok := venues[c.VenueSlug]; ok {
			mode = v.DedupKey
		}

		var nameDateKey string
		switch mode {
		case venue.KeyNameDate:
			if date := candidateDate(c, now); date != "" {
				nameDateKey = fmt.Sprintf("name|%s|%s|%s", c.VenueSlug, NormalizeName(c.Name), date)
			}
		default:
			if c.Code != "" {
				keys = append(keys, fmt.Sprintf("code|%s|%s", c.VenueSlug, c.Code))
			}
		}

		existing := -1
		for _, key := range keys {
			if idx, ok := byKey[key]; ok {
				existing = idx
				break
			}
		}
		if existing < 0 && nameDateKey != "" {
			for _, idx := range byNameDate[nameDateKey] {
				// Two same-named events on one date are distinct
				// when they start at different hours.
				if c.StartTime != "" && kept[idx].StartTime != "" && c.StartTime != kept[idx].StartTime {
					continue
				}
				existing = idx
				break
			}
		}

		if existing >= 0 {
			if priority[c.Source] > priority[kept[existing].Source] {
				kept[existing] = c
			}
			for _, key := range keys {
				byKey[key] = existing
			}
			continue
		}

		kept = append(kept, c)
		idx := len(kept) - 1
		for _, key := range keys {
			byKey[key] = idx
		}
		if nameDateKey != "" {
			byNameDate[nameDateKey] = append(byNameDate[nameDateKey], idx)
		}
	}

	return kept
}

var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName strips punctuation, lowercases, and collapses whitespace for
// use as a dedup key component.
func NormalizeName(name string) string {
	name = punctuationRe.ReplaceAllString(strings.ToLower(name), "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

var freeTextDayRe = regexp.MustCompile(`(\d{1,2})\s+(?:de\s+)?(\p{L}+)`)

// candidateDate derives a comparable date key from a candidate: explicit
// date parts first, then the free-text date, then the URL's embedded stamp.
func candidateDate(c Candidate, now time.Time) string {
	if c.DateParts != nil {
		return fmt.Sprintf("%02d-%02d-%04d", c.DateParts.Day, c.DateParts.Month, c.DateParts.Year)
	}

	if m := freeTextDayRe.FindStringSubmatch(c.DateText); m != nil {
		if month := MonthNumber(m[2]); month > 0 {
			year := now.Year()
			if month < int(now.Month()) {
				year++
			}
			return fmt.Sprintf("%02d-%02d-%04d", atoi(m[1]), month, year)
		}
	}

	if dp := DateFromURL(c.URL); dp != nil {
		return fmt.Sprintf("%02d-%02d-%04d", dp.Day, dp.Month, dp.Year)
	}

	return ""
}
