package tickets

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Domain terms that count toward a keyword-overlap match between two ticket
// labels. Generic filler words shared by every label do not.
var matchKeywords = map[string]bool{
	"ENTRADA":     true,
	"ENTRADAS":    true,
	"PROMOCION":   true,
	"VIP":         true,
	"RESERVADO":   true,
	"LISTA":       true,
	"CONSUMICION": true,
	"GENERAL":     true,
	"ANTICIPADA":  true,
	"COPA":        true,
	"GRATIS":      true,
}

// Reconcile merges the markdown and structured-data views of an event's
// tickets. Markdown labels read like the box office wrote them, schema
// offers carry the reliable price and purchase URL; the merged list keeps
// the best of each. Sold-out reconciles as a logical OR in every branch.
func Reconcile(markdownTickets, schemaTickets []Ticket) []Ticket {
	if len(markdownTickets) == 0 {
		return schemaTickets
	}
	if len(schemaTickets) == 0 {
		return markdownTickets
	}

	if hasRealPrices(schemaTickets) && !hasRealPrices(markdownTickets) {
		return enrichFromSchema(markdownTickets, schemaTickets)
	}
	return matchBothSides(markdownTickets, schemaTickets)
}

func hasRealPrices(tickets []Ticket) bool {
	for _, t := range tickets {
		if RealPrice(t.Price) {
			return true
		}
	}
	return false
}

// enrichFromSchema handles the common case where markdown lists the ticket
// names but schema alone knows the prices: each markdown ticket adopts the
// price, URL, and availability of its matching offer, found by exact
// normalized label first and token overlap second.
func enrichFromSchema(markdownTickets, schemaTickets []Ticket) []Ticket {
	bySchema := make(map[string]Ticket, len(schemaTickets))
	for _, st := range schemaTickets {
		norm := NormalizeLabel(st.Label)
		if _, ok := bySchema[norm]; !ok {
			bySchema[norm] = st
		}
	}

	usedLabels := make(map[string]bool, len(schemaTickets))
	merged := make([]Ticket, 0, len(markdownTickets))
	for _, t := range markdownTickets {
		norm := NormalizeLabel(t.Label)
		usedLabels[norm] = true

		st, ok := bySchema[norm]
		if !ok {
			st, ok = bestPartialMatch(norm, schemaTickets)
		}
		if ok {
			usedLabels[NormalizeLabel(st.Label)] = true
			t.Price = st.Price
			t.PurchaseURL = st.PurchaseURL
			t.SoldOut = t.SoldOut || st.SoldOut
		}
		merged = append(merged, t)
	}

	// Offers the prose never mentioned still surface.
	for _, st := range schemaTickets {
		if !usedLabels[NormalizeLabel(st.Label)] {
			merged = append(merged, st)
		}
	}
	return merged
}

// bestPartialMatch finds the schema ticket sharing the most normalized
// tokens with the label, requiring at least two in common. Ties fall to the
// closer label by Jaro-Winkler similarity.
func bestPartialMatch(norm string, schemaTickets []Ticket) (Ticket, bool) {
	var best Ticket
	bestScore, bestSim := 0, 0.0
	tokens := tokenSet(norm)

	for _, st := range schemaTickets {
		stNorm := NormalizeLabel(st.Label)
		score := sharedCount(tokens, tokenSet(stNorm))
		if score < 2 {
			continue
		}
		sim := matchr.JaroWinkler(norm, stNorm, false)
		if score > bestScore || (score == bestScore && sim > bestSim) {
			best, bestScore, bestSim = st, score, sim
		}
	}
	return best, bestScore > 0
}

// matchBothSides handles the case where both parsers found priced tickets.
// Each markdown ticket tries, in order: exact label equality, normalized
// label equality, domain-keyword overlap, unique price equality. Matches
// copy the offer URL always and the price only when the offer carries one.
func matchBothSides(markdownTickets, schemaTickets []Ticket) []Ticket {
	merged := make([]Ticket, len(markdownTickets))
	copy(merged, markdownTickets)

	used := make(map[int]bool, len(schemaTickets))
	for i := range merged {
		idx := findMatch(merged[i], schemaTickets, used)
		if idx < 0 {
			continue
		}
		used[idx] = true

		st := schemaTickets[idx]
		merged[i].PurchaseURL = st.PurchaseURL
		if RealPrice(st.Price) {
			merged[i].Price = strings.TrimSpace(st.Price)
		}
		merged[i].SoldOut = merged[i].SoldOut || st.SoldOut
	}

	for idx, st := range schemaTickets {
		if !used[idx] {
			merged = append(merged, st)
		}
	}
	return merged
}

func findMatch(t Ticket, schemaTickets []Ticket, used map[int]bool) int {
	norm := NormalizeLabel(t.Label)

	for idx, st := range schemaTickets {
		if !used[idx] && (st.Label == t.Label || NormalizeLabel(st.Label) == norm) {
			return idx
		}
	}

	tokens := tokenSet(norm)
	bestIdx, bestScore, bestSim := -1, 0, 0.0
	for idx, st := range schemaTickets {
		if used[idx] {
			continue
		}
		stNorm := NormalizeLabel(st.Label)
		score := keywordOverlap(tokens, tokenSet(stNorm))
		if score < 2 {
			continue
		}
		sim := matchr.JaroWinkler(norm, stNorm, false)
		if score > bestScore || (score == bestScore && sim > bestSim) {
			bestIdx, bestScore, bestSim = idx, score, sim
		}
	}
	if bestIdx >= 0 {
		return bestIdx
	}

	if RealPrice(t.Price) {
		match, count := -1, 0
		for idx, st := range schemaTickets {
			if !used[idx] && strings.TrimSpace(st.Price) == strings.TrimSpace(t.Price) {
				match = idx
				count++
			}
		}
		if count == 1 {
			return match
		}
	}
	return -1
}

func tokenSet(norm string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(norm) {
		set[tok] = true
	}
	return set
}

func sharedCount(a, b map[string]bool) int {
	n := 0
	for tok := range a {
		if b[tok] {
			n++
		}
	}
	return n
}

// keywordOverlap counts shared domain keywords, with a bonus when both
// labels carry the same numeric token ("2 CONSUMICIONES" vs "2 COPAS").
func keywordOverlap(a, b map[string]bool) int {
	score := 0
	for tok := range a {
		if !b[tok] {
			continue
		}
		if matchKeywords[tok] {
			score++
		} else if isNumeric(tok) {
			score++
		}
	}
	return score
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
