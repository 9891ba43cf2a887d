// Package schemaorg reads embedded JSON-LD blocks out of scraped markup.
// FourVenues detail pages carry their Event and Offer data this way, and
// both the ticket and detail extractors consume it.
package schemaorg

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Items parses every <script type="application/ld+json"> block in the markup
// and returns the flattened item maps. Top-level arrays and @graph wrappers
// are expanded; malformed blocks are skipped.
func Items(markup string) []map[string]any {
	if markup == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var items []map[string]any
	doc.Find("script[type='application/ld+json']").Each(func(_ int, script *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(script.Text())), &data); err != nil {
			return
		}
		items = append(items, flatten(data)...)
	})
	return items
}

func flatten(data any) []map[string]any {
	switch v := data.(type) {
	case []any:
		var items []map[string]any
		for _, entry := range v {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			return flatten(graph)
		}
		return []map[string]any{v}
	default:
		return nil
	}
}

// List coerces a field that may hold either a single object or an array of
// objects, the way JSON-LD producers emit "offers" and "image".
func List(field any) []map[string]any {
	switch v := field.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		var items []map[string]any
		for _, entry := range v {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	default:
		return nil
	}
}

// Str reads a field as a string, rendering JSON numbers without a trailing
// exponent so a price of 15 comes back as "15".
func Str(item map[string]any, key string) string {
	switch v := item[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
