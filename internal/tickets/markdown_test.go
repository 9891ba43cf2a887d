package tickets

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const eventURL = "https://site.fourvenues.com/es/luminata-disco/events/fiesta-K7HZ"

func TestParseMarkdownWindowHeuristic(t *testing.T) {
	// Each standalone price belongs to its own header and never crosses
	// the next-header boundary.
	markdown := strings.Join([]string{
		"# FIESTA REMEMBER",
		"",
		"- ENTRADA VIP",
		"Acceso preferente",
		"15€",
		"- ENTRADA GENERAL",
		"",
		"8€",
	}, "\n")

	got := ParseMarkdown(markdown, eventURL)
	expected := []Ticket{
		{Label: "ENTRADA VIP", Price: "15", PurchaseURL: eventURL},
		{Label: "ENTRADA GENERAL", Price: "8", PurchaseURL: eventURL},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("ParseMarkdown mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMarkdownInlinePrice(t *testing.T) {
	got := ParseMarkdown("- ENTRADA GENERAL 12,50€\n10€", eventURL)
	require.Len(t, got, 1)
	require.Equal(t, "12.50", got[0].Price)
}

func TestParseMarkdownConsumicionLookahead(t *testing.T) {
	markdown := strings.Join([]string{
		"- ENTRADA CON CONSUMICIÓN",
		"Incluye una copa",
		"desde 14€ por persona",
	}, "\n")

	got := ParseMarkdown(markdown, eventURL)
	require.Len(t, got, 1)
	require.Equal(t, "14", got[0].Price)
	require.Equal(t, "Incluye una copa", got[0].Description)
}

func TestParseMarkdownSoldOut(t *testing.T) {
	markdown := strings.Join([]string{
		"- ENTRADA VIP",
		"Entradas agotadas",
		"- ENTRADA GENERAL",
		"10€",
	}, "\n")

	got := ParseMarkdown(markdown, eventURL)
	require.Len(t, got, 2)
	require.True(t, got[0].SoldOut)
	require.False(t, got[1].SoldOut)
}

func TestParseMarkdownMinimumGap(t *testing.T) {
	// The price line right after a closed ticket's header must not leak
	// backward into the previous ticket.
	markdown := strings.Join([]string{
		"- ENTRADA VIP",
		"- ENTRADA GENERAL",
		"10€",
	}, "\n")

	got := ParseMarkdown(markdown, eventURL)
	require.Len(t, got, 2)
	require.Equal(t, "0", got[0].Price)
	require.Equal(t, "10", got[1].Price)
}

func TestParseMarkdownLongestDescriptionWins(t *testing.T) {
	markdown := strings.Join([]string{
		"- ENTRADA VIP",
		"Con copa",
		"Incluye dos copas de alcohol premium",
	}, "\n")

	got := ParseMarkdown(markdown, eventURL)
	require.Len(t, got, 1)
	require.Equal(t, "Incluye dos copas de alcohol premium", got[0].Description)
}

func TestParseMarkdownDeduplicates(t *testing.T) {
	markdown := strings.Join([]string{
		"- ENTRADA GENERAL 10€",
		"texto",
		"- ENTRADA   GENERAL 10€",
		"- ENTRADA GENERAL 12€",
	}, "\n")

	got := ParseMarkdown(markdown, eventURL)
	require.Len(t, got, 2)
}

func TestParseMarkdownIgnoresNonTicketLists(t *testing.T) {
	markdown := strings.Join([]string{
		"- Política de privacidad",
		"- Condiciones de uso",
	}, "\n")
	require.Empty(t, ParseMarkdown(markdown, eventURL))
	require.Empty(t, ParseMarkdown("", eventURL))
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"entrada   general", "ENTRADA GENERAL"},
		{"Promoción 2x1", "PROMOCION 2X1"},
		{"Entrada + consumición", "ENTRADA + CONSUMICION"},
		{"Entrada 2 consumiciones", "ENTRADA 2 CONSUMICION"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.expected {
			t.Errorf("NormalizeLabel(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
