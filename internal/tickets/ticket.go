// Package tickets extracts and reconciles purchase options from an event's
// detail page. Two independent parsers run over the same page, one on the
// generated markdown and one on the embedded JSON-LD, and a reconciler
// combines their partial views into one list.
package tickets

import (
	"regexp"
	"strings"
)

// Ticket is one purchasable admission option for an event.
type Ticket struct {
	Label       string `json:"label"`
	Price       string `json:"price"`
	SoldOut     bool   `json:"soldOut"`
	Description string `json:"description,omitempty"`
	PurchaseURL string `json:"purchaseUrl,omitempty"`
}

var collapseRe = regexp.MustCompile(`\s+`)

// NormalizeLabel canonicalizes a ticket label for comparison: uppercased,
// whitespace collapsed, accented promotion and consumption variants folded
// to their unaccented singular forms. The same function backs both ticket
// dedup and cross-source matching.
func NormalizeLabel(label string) string {
	if label == "" {
		return ""
	}
	norm := collapseRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(label)), " ")
	norm = strings.ReplaceAll(norm, "PROMOCIÓN", "PROMOCION")
	norm = strings.ReplaceAll(norm, "CONSUMICIONES", "CONSUMICION")
	norm = strings.ReplaceAll(norm, "CONSUMICIÓN", "CONSUMICION")
	return norm
}

// RealPrice reports whether a price string carries actual pricing data
// rather than the unknown-price placeholder.
func RealPrice(price string) bool {
	p := strings.TrimSpace(price)
	return p != "" && p != "0"
}
