package tickets

import (
	"regexp"
	"strings"
)

// Line-window constants for associating free-standing price, sold-out, and
// description lines with the preceding ticket header. The cap bounds how far
// a block may run; the minimum gap keeps a trailing line from leaking back
// into a ticket that already closed.
const (
	maxHeaderDistance   = 50
	minGapAfterPrevious = 2
	priceLookaheadLines = 5
)

var headerKeywords = []string{
	"ENTRADA", "ENTRADAS", "PROMOCIÓN", "PROMOCION", "VIP", "RESERVADO", "LISTA",
}

var (
	inlinePriceRe     = regexp.MustCompile(`(\d+(?:[,.]\d+)?)\s*€`)
	standalonePriceRe = regexp.MustCompile(`^(\d+)\s*€$`)
)

func isTicketHeader(line string) bool {
	if !strings.HasPrefix(line, "- ") {
		return false
	}
	upper := strings.ToUpper(line)
	for _, kw := range headerKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// ParseMarkdown walks the page markdown as a line sequence and builds one
// ticket per header line. Headers are list items naming an admission,
// promotion, VIP, reserved-table, or guest-list option. Lines between one
// header and the next may supply the price, a sold-out marker, or a
// drink-inclusion description, subject to the distance window.
func ParseMarkdown(markdown, eventURL string) []Ticket {
	if markdown == "" {
		return nil
	}

	lines := strings.Split(markdown, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var headerLines []int
	for i, line := range lines {
		if isTicketHeader(line) {
			headerLines = append(headerLines, i)
		}
	}

	var tickets []Ticket
	var current *Ticket
	start, prevEnd := -1, -1

	// Distance to the next header bounds the current ticket's block.
	inWindow := func(i int) bool {
		maxDist := maxHeaderDistance
		for _, h := range headerLines {
			if h > start {
				if d := h - start; d < maxDist {
					maxDist = d
				}
				break
			}
		}
		return i-start <= maxDist && i-prevEnd >= minGapAfterPrevious
	}

	for i, line := range lines {
		switch {
		case isTicketHeader(line):
			if current != nil {
				tickets = append(tickets, *current)
				prevEnd = i - 1
			}

			label := strings.TrimSpace(line[2:])
			price := "0"
			if m := inlinePriceRe.FindStringSubmatch(label); m != nil {
				price = strings.ReplaceAll(m[1], ",", ".")
			}

			// Consumption-inclusive tickets often list their price a
			// few lines below the header.
			if price == "0" && strings.Contains(NormalizeLabel(label), "CONSUMICION") {
				for j := i + 1; j < len(lines) && j <= i+priceLookaheadLines; j++ {
					if m := inlinePriceRe.FindStringSubmatch(lines[j]); m != nil {
						price = strings.ReplaceAll(m[1], ",", ".")
						break
					}
				}
			}

			current = &Ticket{Label: label, Price: price, PurchaseURL: eventURL}
			start = i

		case current == nil:

		case current.Price == "0" && standalonePriceRe.MatchString(line):
			if inWindow(i) {
				current.Price = standalonePriceRe.FindStringSubmatch(line)[1]
			}

		case strings.Contains(strings.ToLower(line), "agotad"):
			if inWindow(i) {
				current.SoldOut = true
			}

		case mentionsDrinks(line):
			if inWindow(i) {
				if len(line) > len(current.Description) {
					current.Description = line
				}
			}
		}
	}
	if current != nil {
		tickets = append(tickets, *current)
	}

	return dedupeTickets(tickets)
}

func mentionsDrinks(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "copa") ||
		strings.Contains(lower, "consumir") ||
		strings.Contains(lower, "alcohol")
}

func dedupeTickets(tickets []Ticket) []Ticket {
	seen := make(map[string]bool, len(tickets))
	unique := tickets[:0:0]
	for _, t := range tickets {
		label := strings.ToLower(collapseRe.ReplaceAllString(strings.TrimSpace(t.Label), " "))
		key := label + "|" + strings.ReplaceAll(t.Price, ",", ".")
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, t)
	}
	return unique
}
