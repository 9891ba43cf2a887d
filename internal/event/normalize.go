package event

import (
	"fmt"
	"regexp"
	"time"

	"github.com/partyfinder/scraper/internal/extract"
	"github.com/partyfinder/scraper/internal/tickets"
	"github.com/partyfinder/scraper/internal/venue"
)

// Defaults applied when no extractor supplied a value. Club nights in this
// market open at 23:00 and close at 06:00 unless the page says otherwise.
const (
	defaultStartTime = "23:00"
	defaultEndTime   = "06:00"
	defaultMinAge    = 18
	defaultCity      = "Murcia"
	defaultCategory  = "Discoteca"
)

// Normalize produces the publishable record for an event. The final date
// comes from explicit date parts first, the free-text date second, and the
// URL's embedded stamp last; with nothing at all, the run date stands in.
func Normalize(e *Event, v venue.Venue, now time.Time) Record {
	date := resolveDate(e, now)

	startTime := e.StartTime
	if startTime == "" {
		startTime = defaultStartTime
	}
	endTime := e.EndTime
	if endTime == "" {
		endTime = defaultEndTime
	}

	// A 00:00 start belongs to the night before: the page shows the date
	// the doors close, the audience looks for the date they go out.
	if startTime == "00:00" || startTime == "0:00" {
		if d, err := time.Parse("2006-01-02", date); err == nil {
			date = d.AddDate(0, 0, -1).Format("2006-01-02")
		}
	}

	minAge := e.MinAge
	if minAge == 0 {
		minAge = defaultMinAge
	}

	tags := e.Tags
	if len(tags) == 0 {
		tags = []string{"Fiesta"}
	}

	list := e.Tickets
	if len(list) == 0 {
		list = []tickets.Ticket{{
			Label:       "Entrada General",
			Price:       "0",
			PurchaseURL: e.URL,
		}}
	}

	name := e.Name
	if name == "" {
		name = "Evento"
	}

	place := Place{
		Name:     v.Name,
		City:     defaultCity,
		Category: defaultCategory,
	}
	if place.Name == "" {
		place.Name = DisplayName(e.VenueSlug)
	}
	if v.City != "" {
		place.City = v.City
	}
	if v.Category != "" {
		place.Category = v.Category
	}
	if loc := e.Location; loc != nil {
		place.Address = loc.Address
		place.PostalCode = loc.PostalCode
		place.Latitude = loc.Latitude
		place.Longitude = loc.Longitude
		if loc.City != "" {
			place.City = loc.City
		}
	}

	return Record{
		Name:        name,
		Description: e.Description,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		ImageURL:    e.ImageURL,
		DetailURL:   e.URL,
		Code:        e.Code,
		Tickets:     list,
		Tags:        tags,
		MinAge:      minAge,
		Venue:       place,
		Source:      "scraper",
	}
}

var dayMonthRe = regexp.MustCompile(`(\d{1,2})\s+(?:de\s+)?(\p{L}+)`)

func resolveDate(e *Event, now time.Time) string {
	if dp := e.DateParts; dp != nil {
		return fmt.Sprintf("%04d-%02d-%02d", dp.Year, dp.Month, dp.Day)
	}

	if m := dayMonthRe.FindStringSubmatch(e.DateText); m != nil {
		if month := extract.MonthNumber(m[2]); month > 0 {
			day := atoi(m[1])
			year := now.Year()
			if month < int(now.Month()) {
				year++
			}
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}

	if dp := extract.DateFromURL(e.URL); dp != nil {
		return fmt.Sprintf("%04d-%02d-%02d", dp.Year, dp.Month, dp.Day)
	}

	return now.Format("2006-01-02")
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
