package extract

import "testing"

func TestValidCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"K7HZ", true},
		{"FIESTA-K7HZ", true},
		{"a_b_c_d", true},
		{"abc", false},
		{"", false},
		{"a-b", false},
		{"K7H Z", false},
		{"{{code}}", false},
	}

	for _, tt := range tests {
		if got := ValidCode(tt.code); got != tt.valid {
			t.Errorf("ValidCode(%q) = %v, expected %v", tt.code, got, tt.valid)
		}
	}
}

func TestSuspiciousURL(t *testing.T) {
	rejected := []string{
		"",
		"/es/luminata-disco/events/{{event.code}}",
		"/es/luminata-disco/events/${code}",
		"/es/luminata-disco/events/%7Bcode%7D",
		"javascript:void(0)",
		"/es/x/events/e=>render(e)",
		"/es/x/events/function(a){return",
		"/es/x/events/with space",
		`/es/x/events/quo"ted`,
	}
	for _, u := range rejected {
		if !SuspiciousURL(u) {
			t.Errorf("expected %q to be rejected", u)
		}
	}

	accepted := []string{
		"/es/luminata-disco/events/K7HZ",
		"https://site.fourvenues.com/es/sala-rem/events/fiesta-18-12-2025-K7HZ",
	}
	for _, u := range accepted {
		if SuspiciousURL(u) {
			t.Errorf("expected %q to be accepted", u)
		}
	}
}

func TestCandidateValid(t *testing.T) {
	good := Candidate{URL: "/es/luminata-disco/events/K7HZ", Code: "K7HZ"}
	if !good.Valid() {
		t.Error("expected valid candidate to pass")
	}

	// Every URL matching an injection pattern must be rejected, even with
	// a plausible code.
	injected := Candidate{URL: "/es/luminata-disco/events/{{code}}", Code: "K7HZ"}
	if injected.Valid() {
		t.Error("expected templated URL to be rejected")
	}

	shortCode := Candidate{URL: "/es/luminata-disco/events/K7HZ", Code: "K7"}
	if shortCode.Valid() {
		t.Error("expected short code to be rejected")
	}
}

func TestCanonicalURL(t *testing.T) {
	got := CanonicalURL("https://site.fourvenues.com/es/x/events/K7HZ?utm=home#frag")
	expected := "https://site.fourvenues.com/es/x/events/K7HZ"
	if got != expected {
		t.Errorf("CanonicalURL = %q, expected %q", got, expected)
	}
}
