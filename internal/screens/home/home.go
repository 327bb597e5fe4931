// Package home is the TUI landing screen.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/router"
	"github.com/lalo8115/proyecto-vuelos/internal/screen"
	"github.com/lalo8115/proyecto-vuelos/internal/screens/history"
	"github.com/lalo8115/proyecto-vuelos/internal/screens/predict"
	"github.com/lalo8115/proyecto-vuelos/internal/service"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/components"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

// HomeScreen offers the prediction form and the history list.
type HomeScreen struct {
	menu   components.Menu
	status string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. repo may be nil when history is off.
func New(svc *service.Service, repo store.PredictionRepo) *HomeScreen {
	items := []components.MenuItem{
		{Label: "PREDICT DELAY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: predict.New(svc)}
			}
		}},
		{Label: "HISTORY", Disabled: repo == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(repo)}
			}
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:   components.NewMenu(items),
		status: statusLine(svc, repo),
	}
}

func statusLine(svc *service.Service, repo store.PredictionRepo) string {
	if svc == nil {
		return "Model not loaded"
	}
	parts := []string{fmt.Sprintf("%d model columns", svc.Schema().Len())}
	if v := svc.Schema().Version(); v != "" {
		parts = append(parts, "schema "+v)
	}
	if svc.AdvisorEnabled() {
		parts = append(parts, "advice on")
	}
	if repo == nil {
		parts = append(parts, "history off")
	}
	return strings.Join(parts, "  ·  ")
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	sections := []string{
		renderBanner(width),
		theme.Hint.Render("Flight delay risk from schedule and route"),
		theme.Body.Render(h.status),
		h.menu.View(),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
