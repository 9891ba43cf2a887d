package tickets

import (
	"regexp"
	"strings"

	"github.com/partyfinder/scraper/internal/schemaorg"
)

// placeholderLabel marks tickets recovered by the raw URL fallback, where
// only the purchase link is known.
const placeholderLabel = "Entrada (Detectada)"

var ticketURLRe = regexp.MustCompile(`"url"\s*:\s*"(https?://[^"]+/tickets/[a-z0-9]{20,})"`)

// ParseSchema reads Offer entries out of the page's JSON-LD blocks. Only
// offers whose URL points into the tickets path are kept; everything else on
// a FourVenues page (share links, venue links) also ships as offers. When no
// structured offers parse at all, a raw scan for ticket-purchase URLs
// produces placeholder tickets with unknown price.
func ParseSchema(markup string) []Ticket {
	if markup == "" {
		return nil
	}

	var tickets []Ticket
	for _, item := range schemaorg.Items(markup) {
		for _, offer := range schemaorg.List(item["offers"]) {
			if schemaorg.Str(offer, "@type") != "Offer" {
				continue
			}
			url := schemaorg.Str(offer, "url")
			if !strings.Contains(url, "/tickets/") {
				continue
			}

			availability := strings.ToLower(schemaorg.Str(offer, "availability"))
			soldOut := strings.Contains(availability, "outofstock") ||
				strings.Contains(availability, "soldout") ||
				schemaorg.Str(offer, "availabilityStatus") == "SoldOut"

			tickets = append(tickets, Ticket{
				Label:       schemaorg.Str(offer, "name"),
				Price:       schemaorg.Str(offer, "price"),
				SoldOut:     soldOut,
				PurchaseURL: url,
			})
		}
	}
	if len(tickets) > 0 {
		return tickets
	}

	seen := make(map[string]bool)
	for _, m := range ticketURLRe.FindAllStringSubmatch(markup, -1) {
		url := m[1]
		if seen[url] {
			continue
		}
		seen[url] = true
		tickets = append(tickets, Ticket{
			Label:       placeholderLabel,
			Price:       "0",
			PurchaseURL: url,
		})
	}
	return tickets
}
