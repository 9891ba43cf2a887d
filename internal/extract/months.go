package extract

import "strings"

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
)

// Deaccent folds the accented vowels that appear in Spanish month and ticket
// vocabulary to their plain forms.
func Deaccent(s string) string {
	return accentReplacer.Replace(s)
}

var monthNumbers = map[string]int{
	"ene": 1, "feb": 2, "mar": 3, "abr": 4,
	"may": 5, "jun": 6, "jul": 7, "ago": 8,
	"sep": 9, "oct": 10, "nov": 11, "dic": 12,
}

// MonthNumber resolves a Spanish month name (full or 3-letter form, any
// case, accents ignored) to its 1-based number. Returns 0 when the token is
// not a month.
func MonthNumber(token string) int {
	token = strings.ToLower(Deaccent(strings.TrimSpace(token)))
	if len(token) < 3 {
		return 0
	}
	n, ok := monthNumbers[token[:3]]
	if !ok {
		return 0
	}
	// Guard against arbitrary words that happen to share a month prefix:
	// accept exact 3-letter forms and the known full names only.
	full := map[int]string{
		1: "enero", 2: "febrero", 3: "marzo", 4: "abril",
		5: "mayo", 6: "junio", 7: "julio", 8: "agosto",
		9: "septiembre", 10: "octubre", 11: "noviembre", 12: "diciembre",
	}
	if len(token) == 3 || token == full[n] {
		return n
	}
	return 0
}
