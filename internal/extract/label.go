package extract

import (
	"regexp"
	"strings"
)

// The listing pages attach a structured accessibility label to each event
// anchor: "Evento: NOMBRE. Edad mínima: N años. Fecha: D de mes. Horario: de
// HH:MM a HH:MM". Every section is optional in practice.
var (
	labelNameRe = regexp.MustCompile(`Evento\s*:\s*(.+?)(?:\.\s*Edad|\s*$)`)
	labelAgeRe  = regexp.MustCompile(`Edad mínima:\s*(.+?)(?:\.\s*Fecha|\s*$)`)
	labelDateRe = regexp.MustCompile(`Fecha:\s*(.+?)(?:\.\s*Horario|\s*$)`)
	labelTimeRe = regexp.MustCompile(`Horario:\s*de\s*(\d{1,2}:\d{2})\s*a\s*(\d{1,2}:\d{2})`)
	digitsRe    = regexp.MustCompile(`(\d+)`)
)

// LabelInfo is the parsed content of an event accessibility label.
type LabelInfo struct {
	Name      string
	AgeText   string
	MinAge    int
	DateText  string
	StartTime string
	EndTime   string
}

// ParseLabel parses the four independently optional captures out of an
// accessibility label. Missing sections leave their fields zero.
func ParseLabel(label string) LabelInfo {
	var info LabelInfo

	if m := labelNameRe.FindStringSubmatch(label); m != nil {
		info.Name = strings.TrimSpace(m[1])
	}
	if m := labelAgeRe.FindStringSubmatch(label); m != nil {
		info.AgeText = strings.TrimSpace(m[1])
		if d := digitsRe.FindStringSubmatch(info.AgeText); d != nil {
			info.MinAge = atoi(d[1])
		}
	}
	if m := labelDateRe.FindStringSubmatch(label); m != nil {
		info.DateText = strings.TrimSpace(m[1])
	}
	if m := labelTimeRe.FindStringSubmatch(label); m != nil {
		info.StartTime = m[1]
		info.EndTime = m[2]
	}

	return info
}

// HasLabel reports whether an aria-label looks like an event label at all.
func HasLabel(label string) bool {
	return strings.Contains(label, "Evento")
}

// apply copies parsed label data onto a candidate, keeping existing values
// where the label has nothing better.
func (info LabelInfo) apply(c *Candidate) {
	if info.Name != "" && (c.Name == "" || c.Name == placeholderName) {
		c.Name = info.Name
	}
	if info.DateText != "" {
		c.DateText = info.DateText
	}
	if info.StartTime != "" {
		c.StartTime = info.StartTime
	}
	if info.EndTime != "" {
		c.EndTime = info.EndTime
	}
	if info.MinAge > 0 {
		c.MinAge = info.MinAge
	}
}
