// Package risk maps a delay probability to a discrete risk band.
package risk

import (
	"fmt"
	"strings"
)

// Band is a discrete delay-risk category.
type Band string

const (
	Low    Band = "LOW"
	Medium Band = "MEDIUM"
	High   Band = "HIGH"
)

// Thresholds in percent. Both are exclusive lower bounds.
const (
	HighAbove   = 50.0
	MediumAbove = 20.0
)

// Classify maps a probability in PERCENT (0-100) to a band:
// HIGH above 50, MEDIUM above 20 up to 50, LOW at or below 20.
func Classify(percent float64) Band {
	switch {
	case percent > HighAbove:
		return High
	case percent > MediumAbove:
		return Medium
	default:
		return Low
	}
}

// FromProbability classifies a fractional probability (0-1).
func FromProbability(p float64) Band {
	return Classify(p * 100)
}

// ParseBand accepts a band name in any case.
func ParseBand(s string) (Band, error) {
	switch b := Band(strings.ToUpper(strings.TrimSpace(s))); b {
	case Low, Medium, High:
		return b, nil
	default:
		return "", fmt.Errorf("unknown risk band %q", s)
	}
}

// Label is the short Spanish label shown to travellers.
func (b Band) Label() string {
	switch b {
	case High:
		return "ALTA"
	case Medium:
		return "MEDIA"
	case Low:
		return "BAJA"
	default:
		return string(b)
	}
}

// Icon is the marker shown next to the message.
func (b Band) Icon() string {
	switch b {
	case High:
		return "⚠️"
	case Medium:
		return "😐"
	default:
		return "✅"
	}
}

// Message renders the traveller-facing summary, e.g.
// "ALTA Probabilidad de Demora: 73.00%".
func (b Band) Message(percent float64) string {
	return fmt.Sprintf("%s Probabilidad de Demora: %.2f%%", b.Label(), percent)
}
