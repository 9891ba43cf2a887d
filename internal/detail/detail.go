// Package detail enriches a deduplicated event candidate from its detail
// page: description prose, flyer image, genre tags, venue location, and a
// structured-data schedule for candidates whose listing carried no date.
package detail

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/partyfinder/scraper/internal/extract"
	"github.com/partyfinder/scraper/internal/schemaorg"
)

// Info is everything the detail page adds on top of the listing candidate.
type Info struct {
	Description string
	ImageURL    string
	Tags        []string
	Location    *Location
	Schedule    *Schedule
}

// Location is the venue address block from the page's JSON-LD Event.
type Location struct {
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

// Schedule is the date and time pair read from JSON-LD startDate/endDate.
type Schedule struct {
	DateText  string
	DateParts *extract.DateParts
	StartTime string
	EndTime   string
}

// Extract runs every detail heuristic over one fetched page.
func Extract(html, rawHTML, markdown, baseURL, eventName string) Info {
	return Info{
		Description: Description(markdown),
		ImageURL:    Image(html, rawHTML, baseURL),
		Tags:        Tags(html, eventName),
		Location:    LocationFromSchema(html),
		Schedule:    ScheduleFromSchema(rawHTML),
	}
}

// Empty reports whether the page yielded nothing usable.
func (i Info) Empty() bool {
	return i.Description == "" && i.ImageURL == "" && i.Location == nil && i.Schedule == nil
}

// Description picks the first prose line near the top of the markdown:
// long enough to be a sentence, not an image, header, list item, or link,
// and not the legal boilerplate every page repeats.
func Description(markdown string) string {
	if markdown == "" {
		return ""
	}

	lines := strings.Split(markdown, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) <= 50 {
			continue
		}
		switch line[0] {
		case '!', '#', '-', '[':
			continue
		}
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "RESERVA") || strings.Contains(upper, "DERECHO") {
			continue
		}
		if strings.Contains(strings.ToLower(line), "google.com/maps") {
			continue
		}
		return line
	}
	return ""
}

var imageFieldRe = regexp.MustCompile(`"image"\s*:\s*"([^"]+)"`)

// Image resolves the flyer image: the og:image meta tag first, then the
// JSON-LD Event image in its string, object, and list spellings, then a raw
// "image" field scan, then a hero or CDN img tag. Candidates from metadata
// must point at the venue platform's domain.
func Image(html, rawHTML, baseURL string) string {
	doc := parse(html)

	if doc != nil {
		if content, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
			if platformImage(content) {
				return content
			}
		}
	}

	if rawHTML != "" {
		for _, item := range schemaorg.Items(rawHTML) {
			if !isEventItem(item) {
				continue
			}
			if url := imageFrom(item["image"]); platformImage(url) {
				return url
			}
		}
		if m := imageFieldRe.FindStringSubmatch(rawHTML); m != nil && platformImage(m[1]) {
			return m[1]
		}
	}

	if doc != nil {
		img := doc.Find("img[class*='hero'], img[class*='main'], img[class*='event']").First()
		if img.Length() == 0 {
			doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				src, _ := s.Attr("src")
				if strings.Contains(src, "fourvenues.com") &&
					(strings.Contains(src, "cdn-cgi") || strings.Contains(src, "imagedelivery")) {
					img = s
					return false
				}
				return true
			})
		}
		if img.Length() > 0 {
			src, _ := img.Attr("src")
			if src != "" && !strings.HasPrefix(src, "http") {
				src = baseURL + "/" + strings.TrimPrefix(src, "/")
			}
			return src
		}
	}

	return ""
}

func platformImage(url string) bool {
	return url != "" && strings.Contains(url, "fourvenues.com")
}

func imageFrom(field any) string {
	switch v := field.(type) {
	case string:
		return v
	case map[string]any:
		return schemaorg.Str(v, "url")
	case []any:
		if len(v) == 0 {
			return ""
		}
		return imageFrom(v[0])
	default:
		return ""
	}
}

var genreKeywords = []string{
	"reggaeton", "comercial", "latin", "techno", "house", "electro",
	"hip hop", "trap", "remember", "indie", "pop", "rock", "r&b",
}

// Tags scans the page's aria-labels and the event name for music genres.
// Events without any genre fall back to a generic party tag plus the
// weekday when the name carries one.
func Tags(html, eventName string) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(genre string) {
		title := titleCase(genre)
		if !seen[title] {
			seen[title] = true
			tags = append(tags, title)
		}
	}

	if doc := parse(html); doc != nil {
		doc.Find("[aria-label]").Each(func(_ int, s *goquery.Selection) {
			label, _ := s.Attr("aria-label")
			lower := strings.ToLower(label)
			for _, genre := range genreKeywords {
				if strings.Contains(lower, genre) {
					add(genre)
				}
			}
		})
	}

	nameLower := strings.ToLower(eventName)
	for _, genre := range genreKeywords {
		if strings.Contains(nameLower, genre) {
			add(genre)
		}
	}

	if len(tags) > 0 {
		return tags
	}
	switch {
	case strings.Contains(nameLower, "viernes"):
		return []string{"Fiesta", "Viernes"}
	case strings.Contains(nameLower, "sabado"), strings.Contains(nameLower, "sábado"):
		return []string{"Fiesta", "Sábado"}
	default:
		return []string{"Fiesta"}
	}
}

func titleCase(genre string) string {
	words := strings.Fields(genre)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// LocationFromSchema reads the Event's location address and coordinates.
// A loose address-class element is the fallback when no JSON-LD parses.
func LocationFromSchema(html string) *Location {
	for _, item := range schemaorg.Items(html) {
		location, ok := item["location"].(map[string]any)
		if !ok {
			continue
		}

		var loc Location
		switch address := location["address"].(type) {
		case map[string]any:
			loc.Address = schemaorg.Str(address, "streetAddress")
			loc.City = schemaorg.Str(address, "addressLocality")
			loc.PostalCode = schemaorg.Str(address, "postalCode")
		case string:
			loc.Address = address
		}
		if geo, ok := location["geo"].(map[string]any); ok {
			loc.Latitude, _ = geo["latitude"].(float64)
			loc.Longitude, _ = geo["longitude"].(float64)
		}
		if loc != (Location{}) {
			return &loc
		}
	}

	if doc := parse(html); doc != nil {
		if text := strings.TrimSpace(doc.Find("[class*='address']").First().Text()); text != "" {
			return &Location{Address: text}
		}
	}
	return nil
}

var isoStampRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T?(\d{2})?:?(\d{2})?`)

var monthNames = [13]string{"", "enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// ScheduleFromSchema recovers the event's date and times from JSON-LD
// startDate/endDate ISO stamps, rendering the date in the same free-text
// form the listing labels use.
func ScheduleFromSchema(markup string) *Schedule {
	for _, item := range schemaorg.Items(markup) {
		if !isEventItem(item) {
			continue
		}
		start := schemaorg.Str(item, "startDate")
		m := isoStampRe.FindStringSubmatch(start)
		if m == nil {
			continue
		}

		parts := &extract.DateParts{
			Year:  atoi(m[1]),
			Month: atoi(m[2]),
			Day:   atoi(m[3]),
		}
		hour, minute := "23", "00"
		if m[4] != "" {
			hour = m[4]
		}
		if m[5] != "" {
			minute = m[5]
		}

		s := &Schedule{
			DateText:  fmt.Sprintf("%d de %s", parts.Day, monthName(parts.Month)),
			DateParts: parts,
			StartTime: hour + ":" + minute,
		}
		if em := isoStampRe.FindStringSubmatch(schemaorg.Str(item, "endDate")); em != nil && em[4] != "" {
			endMinute := "00"
			if em[5] != "" {
				endMinute = em[5]
			}
			s.EndTime = em[4] + ":" + endMinute
		}
		return s
	}
	return nil
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return monthNames[1]
	}
	return monthNames[month]
}

func isEventItem(item map[string]any) bool {
	switch t := item["@type"].(type) {
	case string:
		return strings.Contains(t, "Event")
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok && strings.Contains(s, "Event") {
				return true
			}
		}
	}
	return false
}

func parse(html string) *goquery.Document {
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
