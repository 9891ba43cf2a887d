package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/venue"
)

const placeholderName = "Evento"

// ExtractFunc is one candidate-extraction strategy over a fetched page.
type ExtractFunc func(v venue.Venue, page *fetch.Result) []Candidate

// AnchorLabel scans anchors whose target path contains the events segment and
// parses their structured accessibility labels. Anchors without a label are
// left for the fallback strategies.
func AnchorLabel(v venue.Venue, page *fetch.Result) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil
	}

	var candidates []Candidate
	doc.Find("a[href*='/events/']").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		label, _ := link.Attr("aria-label")
		if !HasLabel(label) {
			return
		}

		code := ResolveCode(href, v.CodeGrammar)
		if code == "" {
			return
		}

		info := ParseLabel(label)
		if info.Name == "" {
			return
		}

		c := Candidate{
			URL:       absolutize(href, v.BaseURL),
			Code:      code,
			VenueSlug: v.Slug,
			Source:    SourceAnchorLabel,
		}
		if img := link.Find("img").First(); img.Length() > 0 {
			c.ImageURL, _ = img.Attr("src")
		}
		info.apply(&c)

		candidates = append(candidates, c)
	})

	return candidates
}

// CustomComponent handles venues that render events as data-attributed
// component cards rather than labeled anchors. The nearest ancestor or
// descendant anchor supplies the URL; the card text supplies the name.
func CustomComponent(v venue.Venue, page *fetch.Result) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil
	}

	cards := doc.Find("[data-testid='event-card'], [data-testid='event-card-name']")
	if cards.Length() == 0 {
		cards = doc.Find("div[class*='event'][class*='card']")
	}

	var candidates []Candidate
	cards.Each(func(_ int, card *goquery.Selection) {
		link := card.Closest("a")
		if link.Length() == 0 {
			link = card.Find("a").First()
		}
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		if !strings.Contains(href, "/events/") {
			return
		}
		code := ResolveCode(href, v.CodeGrammar)
		if code == "" {
			return
		}

		name := strings.TrimSpace(card.Text())
		if name == "" {
			name = placeholderName
		}

		c := Candidate{
			URL:       absolutize(href, v.BaseURL),
			Code:      code,
			Name:      name,
			VenueSlug: v.Slug,
			Source:    SourceComponent,
		}

		// The wrapping anchor usually carries the full label even when
		// the card itself does not.
		if label, _ := link.Attr("aria-label"); HasLabel(label) {
			ParseLabel(label).apply(&c)
			c.Source = SourceAnchorLabel
		}

		candidates = append(candidates, c)
	})

	return candidates
}

var isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// EmbeddedJSON scans <script type="application/json"> state blobs for event
// collections. Single-page-app listings ship their data this way before any
// of it is rendered.
func EmbeddedJSON(v venue.Venue, page *fetch.Result) []Candidate {
	candidates := embeddedJSONFromMarkup(v, page.HTML)
	if len(candidates) == 0 && page.RawHTML != "" {
		candidates = embeddedJSONFromMarkup(v, page.RawHTML)
	}
	return candidates
}

func embeddedJSONFromMarkup(v venue.Venue, markup string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var candidates []Candidate
	doc.Find("script[type='application/json']").Each(func(_ int, script *goquery.Selection) {
		var blob map[string]json.RawMessage
		if err := json.Unmarshal([]byte(script.Text()), &blob); err != nil {
			return
		}

		for key, raw := range blob {
			if !strings.Contains(strings.ToLower(key), "events") {
				continue
			}
			var wrapper struct {
				Data []struct {
					ID    string `json:"id"`
					Name  string `json:"name"`
					Date  string `json:"date"`
					Flyer struct {
						Image string `json:"image"`
					} `json:"flyer"`
				} `json:"data"`
			}
			if err := json.Unmarshal(raw, &wrapper); err != nil {
				continue
			}

			for _, e := range wrapper.Data {
				if e.ID == "" {
					continue
				}
				c := Candidate{
					URL:       v.EventsURL() + "/" + e.ID,
					Code:      e.ID,
					Name:      e.Name,
					VenueSlug: v.Slug,
					ImageURL:  e.Flyer.Image,
					Source:    SourceEmbeddedJSON,
				}
				if m := isoDateRe.FindStringSubmatch(e.Date); m != nil {
					c.DateParts = &DateParts{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
				}
				candidates = append(candidates, c)
			}
		}
	})

	return candidates
}

// RawMarkup is the last-resort scan over the full post-render markup for any
// substring matching the venue's events path. Matches carrying template or
// script artifacts are rejected by the injection denylist.
func RawMarkup(v venue.Venue, page *fetch.Result) []Candidate {
	markup := page.HTML
	if len(page.RawHTML) > len(page.HTML) {
		markup = page.RawHTML
	}
	if markup == "" {
		return nil
	}

	pattern := regexp.MustCompile(`(?:https?://[^\s"'<>)]+)?/es/` + regexp.QuoteMeta(v.Slug) + `/events/[^\s"'<>)]+`)

	seen := make(map[string]bool)
	var candidates []Candidate
	for _, match := range pattern.FindAllString(markup, -1) {
		if SuspiciousURL(match) || seen[match] {
			continue
		}
		seen[match] = true

		code := ResolveCode(match, v.CodeGrammar)
		if code == "" {
			continue
		}

		candidates = append(candidates, Candidate{
			URL:       absolutize(match, v.BaseURL),
			Code:      code,
			Name:      nameFromSlug(match, code),
			VenueSlug: v.Slug,
			Source:    SourceRawHTML,
		})
	}

	return candidates
}

var markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

// MarkdownLink scans the generated markdown for [text](url) links into the
// events path. Only consulted when nothing else found candidates.
func MarkdownLink(v venue.Venue, page *fetch.Result) []Candidate {
	if page.Markdown == "" {
		return nil
	}

	var candidates []Candidate
	for _, m := range markdownLinkRe.FindAllStringSubmatch(page.Markdown, -1) {
		text, target := strings.TrimSpace(m[1]), m[2]
		if !strings.Contains(target, "/events/") || SuspiciousURL(target) {
			continue
		}

		code := ResolveCode(target, v.CodeGrammar)
		if code == "" {
			continue
		}

		name := text
		if name == "" {
			name = nameFromSlug(target, code)
		}

		candidates = append(candidates, Candidate{
			URL:       absolutize(target, v.BaseURL),
			Code:      code,
			Name:      name,
			VenueSlug: v.Slug,
			Source:    SourceMarkdownLink,
		})
	}

	return candidates
}

var trailingStampRe = regexp.MustCompile(`-{1,2}\d{1,2}-\d{2}-\d{4}\d*$`)

// nameFromSlug infers a display name from an event URL: the slug minus the
// trailing code and date stamp, title-cased.
func nameFromSlug(rawURL, code string) string {
	p := strings.TrimSuffix(urlPath(rawURL), "/")
	segment := p
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		segment = p[idx+1:]
	}

	segment = strings.TrimSuffix(segment, "-"+code)
	segment = trailingStampRe.ReplaceAllString(segment, "")
	if segment == "" || segment == code {
		return placeholderName
	}

	words := splitNonEmpty(segment, "-")
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
