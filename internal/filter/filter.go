// Package filter narrows a set of event records by caller criteria: date
// range, venue, tag, price ceiling, weekends. The read API builds a Filter
// from query parameters.
package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/partyfinder/scraper/internal/event"
)

// Filter represents record filtering criteria. Zero-value fields do not
// constrain.
type Filter struct {
	// DateFrom and DateTo bound the event date, inclusive (ISO dates).
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
	// Venue matches the venue name, case-insensitive substring.
	Venue string `json:"venue,omitempty"`
	// Tag matches any event tag, case-insensitive.
	Tag string `json:"tag,omitempty"`
	// MaxPrice keeps events with at least one ticket at or under the
	// ceiling. Tickets with unknown price don't count.
	MaxPrice float64 `json:"maxPrice,omitempty"`
	// WeekendsOnly keeps Friday and Saturday nights.
	WeekendsOnly bool `json:"weekendsOnly,omitempty"`
}

// IsEmpty reports whether the filter constrains anything.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == "" && f.DateTo == "" && f.Venue == "" &&
		f.Tag == "" && f.MaxPrice == 0 && !f.WeekendsOnly
}

// Apply returns the records matching every set criterion, preserving order.
func (f *Filter) Apply(records []event.Record) []event.Record {
	if f.IsEmpty() {
		return records
	}

	var matched []event.Record
	for _, r := range records {
		if f.matches(r) {
			matched = append(matched, r)
		}
	}
	return matched
}

func (f *Filter) matches(r event.Record) bool {
	// ISO dates compare correctly as strings.
	if f.DateFrom != "" && r.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && r.Date > f.DateTo {
		return false
	}

	if f.Venue != "" && !strings.Contains(strings.ToLower(r.Venue.Name), strings.ToLower(f.Venue)) {
		return false
	}

	if f.Tag != "" {
		found := false
		for _, tag := range r.Tags {
			if strings.EqualFold(tag, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.MaxPrice > 0 && !hasTicketUnder(r, f.MaxPrice) {
		return false
	}

	if f.WeekendsOnly && !isWeekendNight(r.Date) {
		return false
	}

	return true
}

func hasTicketUnder(r event.Record, ceiling float64) bool {
	for _, t := range r.Tickets {
		price, err := strconv.ParseFloat(strings.ReplaceAll(t.Price, ",", "."), 64)
		if err != nil || price == 0 {
			continue
		}
		if price <= ceiling {
			return true
		}
	}
	return false
}

// isWeekendNight treats Friday and Saturday as the going-out nights; the
// record's date is the night the party starts.
func isWeekendNight(date string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Friday || d.Weekday() == time.Saturday
}
