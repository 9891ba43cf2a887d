package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected LabelInfo
	}{
		{
			name:  "full label",
			label: "Evento: FIESTA REMEMBER. Edad mínima: 18 años. Fecha: 10 de enero. Horario: de 23:00 a 06:00",
			expected: LabelInfo{
				Name:      "FIESTA REMEMBER",
				AgeText:   "18 años",
				MinAge:    18,
				DateText:  "10 de enero",
				StartTime: "23:00",
				EndTime:   "06:00",
			},
		},
		{
			name:  "name only",
			label: "Evento: SABADO GLOW",
			expected: LabelInfo{
				Name: "SABADO GLOW",
			},
		},
		{
			name:  "missing age",
			label: "Evento: HALLOWEEN. Fecha: 31 de octubre. Horario: de 23:30 a 07:00",
			expected: LabelInfo{
				Name:      "HALLOWEEN",
				DateText:  "31 de octubre",
				StartTime: "23:30",
				EndTime:   "07:00",
			},
		},
		{
			name:  "missing schedule",
			label: "Evento: REGGAETON NIGHT. Edad mínima: 21 años. Fecha: 5 de mayo",
			expected: LabelInfo{
				Name:     "REGGAETON NIGHT",
				AgeText:  "21 años",
				MinAge:   21,
				DateText: "5 de mayo",
			},
		},
		{
			name:     "not an event label",
			label:    "Abrir menú de navegación",
			expected: LabelInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLabel(tt.label)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("ParseLabel(%q) mismatch (-want +got):\n%s", tt.label, diff)
			}
		})
	}
}

func TestHasLabel(t *testing.T) {
	if !HasLabel("Evento: X") {
		t.Error("expected event label to be recognized")
	}
	if HasLabel("Carrito de compra") {
		t.Error("expected non-event label to be rejected")
	}
}
