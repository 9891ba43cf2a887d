package tickets

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const detailMarkup = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Event",
  "name": "FIESTA REMEMBER",
  "offers": [
    {
      "@type": "Offer",
      "name": "Entrada General",
      "price": 10,
      "url": "https://site.fourvenues.com/es/x/events/a/tickets/abcdef0123456789abcdef01",
      "availability": "https://schema.org/InStock"
    },
    {
      "@type": "Offer",
      "name": "Entrada VIP",
      "price": "25",
      "url": "https://site.fourvenues.com/es/x/events/a/tickets/ffffff0123456789abcdef01",
      "availability": "https://schema.org/OutOfStock"
    },
    {
      "@type": "Offer",
      "name": "Compartir",
      "price": "0",
      "url": "https://site.fourvenues.com/es/x/events/a/share"
    }
  ]
}
</script>
</head><body></body></html>`

func TestParseSchema(t *testing.T) {
	got := ParseSchema(detailMarkup)

	expected := []Ticket{
		{
			Label:       "Entrada General",
			Price:       "10",
			PurchaseURL: "https://site.fourvenues.com/es/x/events/a/tickets/abcdef0123456789abcdef01",
		},
		{
			Label:       "Entrada VIP",
			Price:       "25",
			SoldOut:     true,
			PurchaseURL: "https://site.fourvenues.com/es/x/events/a/tickets/ffffff0123456789abcdef01",
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("ParseSchema mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSchemaGraphWrapper(t *testing.T) {
	markup := `<script type="application/ld+json">
	{"@graph":[{"@type":"Event","offers":{"@type":"Offer","name":"Lista","price":"0","url":"https://x/tickets/abc","availabilityStatus":"SoldOut"}}]}
	</script>`

	got := ParseSchema(markup)
	require.Len(t, got, 1)
	require.Equal(t, "Lista", got[0].Label)
	require.True(t, got[0].SoldOut)
}

func TestParseSchemaRegexFallback(t *testing.T) {
	markup := `<html><body><script>
	var state = {"url": "https://site.fourvenues.com/es/x/events/a/tickets/abcdef0123456789abcd", "other": 1};
	var dup = {"url": "https://site.fourvenues.com/es/x/events/a/tickets/abcdef0123456789abcd"};
	</script></body></html>`

	got := ParseSchema(markup)
	require.Len(t, got, 1)
	require.Equal(t, placeholderLabel, got[0].Label)
	require.Equal(t, "0", got[0].Price)
	require.Contains(t, got[0].PurchaseURL, "/tickets/")
}

func TestParseSchemaMalformedBlocks(t *testing.T) {
	markup := `<script type="application/ld+json">{not json</script>`
	require.Empty(t, ParseSchema(markup))
	require.Empty(t, ParseSchema(""))
}
