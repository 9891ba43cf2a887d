package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/partyfinder/scraper/internal/event"
	"github.com/partyfinder/scraper/internal/store"
)

// OutputFormat specifies the output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the run result in the specified format.
func WriteOutput(w io.Writer, info store.RunInfo, format OutputFormat, verbose bool) error {
	sortRecords(info.Records)
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case FormatText:
		return writeText(w, info, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeText(w io.Writer, info store.RunInfo, verbose bool) error {
	if len(info.Records) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	byVenue := make(map[string][]event.Record)
	var venues []string
	for _, r := range info.Records {
		if _, ok := byVenue[r.Venue.Name]; !ok {
			venues = append(venues, r.Venue.Name)
		}
		byVenue[r.Venue.Name] = append(byVenue[r.Venue.Name], r)
	}
	sort.Strings(venues)

	for _, name := range venues {
		records := byVenue[name]
		fmt.Fprintf(w, "\n%s (%d events):\n", name, len(records))
		for _, r := range records {
			fmt.Fprintf(w, "  %s  %s %s-%s\n", r.Date, r.Name, r.StartTime, r.EndTime)
			if verbose {
				fmt.Fprintf(w, "       code: %s\n", r.Code)
				fmt.Fprintf(w, "       url: %s\n", r.DetailURL)
				for _, ticket := range r.Tickets {
					status := ""
					if ticket.SoldOut {
						status = " (agotada)"
					}
					fmt.Fprintf(w, "       ticket: %s %s€%s\n", ticket.Label, ticket.Price, status)
				}
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events from %d venues", len(info.Records), info.Venues)
	if info.Failures > 0 {
		fmt.Fprintf(w, " (%d venues failed)", info.Failures)
	}
	fmt.Fprintln(w)
	return nil
}

// sortRecords orders records by date, then start time, then name, so the
// output and the artifact are stable across runs.
func sortRecords(records []event.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		if records[i].StartTime != records[j].StartTime {
			return records[i].StartTime < records[j].StartTime
		}
		return records[i].Name < records[j].Name
	})
}
