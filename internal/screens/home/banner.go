package home

import (
	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

const bannerArt = `
 ██╗   ██╗██╗   ██╗███████╗██╗      ██████╗ ███████╗
 ██║   ██║██║   ██║██╔════╝██║     ██╔═══██╗██╔════╝
 ██║   ██║██║   ██║█████╗  ██║     ██║   ██║███████╗
 ╚██╗ ██╔╝██║   ██║██╔══╝  ██║     ██║   ██║╚════██║
  ╚████╔╝ ╚██████╔╝███████╗███████╗╚██████╔╝███████║
   ╚═══╝   ╚═════╝ ╚══════╝╚══════╝ ╚═════╝ ╚══════╝`

const bannerCompact = "V U E L O S"

// renderBanner uses a compact fallback below 56 columns.
func renderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 56 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
