package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

// ProbabilityBar draws a horizontal bar filled to a fractional
// probability in the colour of its risk band.
type ProbabilityBar struct {
	Probability float64
	Width       int
}

// View renders the bar followed by the percentage.
func (p ProbabilityBar) View() string {
	barWidth := p.Width - 9
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Probability)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	band := risk.FromProbability(p.Probability)
	bar := lipgloss.NewStyle().Background(theme.BandColor(band)).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	return bar + theme.BandStyle(band).Render(fmt.Sprintf(" %6.2f%%", p.Probability*100))
}
