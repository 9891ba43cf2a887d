package event

import (
	"strings"
	"time"

	"github.com/partyfinder/scraper/internal/detail"
	"github.com/partyfinder/scraper/internal/extract"
	"github.com/partyfinder/scraper/internal/tickets"
)

// Event is one scraped party, accumulated across the listing candidate, the
// ticket parsers, and the detail enrichment, before normalization.
type Event struct {
	Name        string
	Description string
	URL         string
	Code        string
	VenueSlug   string
	DateText    string
	DateParts   *extract.DateParts
	StartTime   string
	EndTime     string
	MinAge      int
	ImageURL    string
	Tags        []string
	Tickets     []tickets.Ticket
	Location    *detail.Location
	Source      string
}

// FromCandidate seeds an event from a validated extraction candidate.
func FromCandidate(c extract.Candidate) *Event {
	return &Event{
		Name:      c.Name,
		URL:       c.URL,
		Code:      c.Code,
		VenueSlug: c.VenueSlug,
		DateText:  c.DateText,
		DateParts: c.DateParts,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		MinAge:    c.MinAge,
		ImageURL:  c.ImageURL,
		Source:    string(c.Source),
	}
}

// Enrich folds detail-page findings into the event. Listing data wins where
// both sides carry a value; the detail page only fills gaps.
func (e *Event) Enrich(info detail.Info) {
	if e.Description == "" {
		e.Description = info.Description
	}
	if e.ImageURL == "" {
		e.ImageURL = info.ImageURL
	}
	if len(e.Tags) == 0 {
		e.Tags = info.Tags
	}
	if e.Location == nil {
		e.Location = info.Location
	}
	if s := info.Schedule; s != nil {
		if e.DateText == "" && e.DateParts == nil {
			e.DateText = s.DateText
			e.DateParts = s.DateParts
		}
		if e.StartTime == "" {
			e.StartTime = s.StartTime
		}
		if e.EndTime == "" {
			e.EndTime = s.EndTime
		}
	}
}

// HasContent reports whether the detail pass found anything worth keeping.
// Venues without stable codes produce phantom candidates whose detail pages
// are empty shells; those get dropped.
func (e *Event) HasContent() bool {
	return e.Description != "" || e.ImageURL != "" || len(e.Tickets) > 0
}

// Place is the venue block embedded in every published record.
type Place struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city"`
	PostalCode string  `json:"postalCode,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	Category   string  `json:"category"`
}

// Record is the normalized document published to the sink and served by the
// read API. Date is ISO (YYYY-MM-DD); times are HH:MM.
type Record struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	ImageURL    string           `json:"imageUrl"`
	DetailURL   string           `json:"detailUrl"`
	Code        string           `json:"code"`
	Tickets     []tickets.Ticket `json:"tickets"`
	Tags        []string         `json:"tags"`
	MinAge      int              `json:"minAge"`
	Venue       Place            `json:"venue"`
	Source      string           `json:"source"`
	LastUpdated time.Time        `json:"lastUpdated,omitempty"`
}

// DisplayName renders a venue slug as a human name ("dodo-club" → "Dodo
// Club") for records whose venue config carries no explicit name.
func DisplayName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
