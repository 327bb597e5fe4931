// Package theme holds the terminal palette and shared lipgloss styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/risk"
)

// Color palette
var (
	Primary = lipgloss.Color("#38BDF8") // Sky
	Accent  = lipgloss.Color("#FBBF24") // Amber
	Text    = lipgloss.Color("#F8FAFC") // White
	TextDim = lipgloss.Color("#94A3B8") // Slate
	BgCard  = lipgloss.Color("#1E293B") // Dark Slate
	Border  = lipgloss.Color("#334155") // Slate

	RiskHigh   = lipgloss.Color("#EF4444") // Red
	RiskMedium = lipgloss.Color("#F97316") // Orange
	RiskLow    = lipgloss.Color("#22C55E") // Green

	Error = RiskHigh
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(12)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(1, 2)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)
)

// BandColor is the colour a risk band is drawn in.
func BandColor(b risk.Band) color.Color {
	switch b {
	case risk.High:
		return RiskHigh
	case risk.Medium:
		return RiskMedium
	case risk.Low:
		return RiskLow
	default:
		return Text
	}
}

// BandStyle renders text in the band colour.
func BandStyle(b risk.Band) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(BandColor(b)).Bold(true)
}

// BandCard is a Card bordered in the band colour.
func BandCard(b risk.Band) lipgloss.Style {
	return Card.BorderForeground(BandColor(b))
}
