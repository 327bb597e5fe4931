// Package app is the root Bubble Tea model of the interactive form.
package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/router"
	"github.com/lalo8115/proyecto-vuelos/internal/screen"
	"github.com/lalo8115/proyecto-vuelos/internal/screens/home"
	"github.com/lalo8115/proyecto-vuelos/internal/service"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/layout"
)

// Options holds the dependencies the screens need.
type Options struct {
	// Service may be nil; the form then reports that no model is loaded.
	Service *service.Service
	// History may be nil when history is disabled.
	History store.PredictionRepo
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status string
	width  int
	height int
}

// NewAppModel creates an AppModel on the home screen.
func NewAppModel(opts Options) AppModel {
	status := ""
	if opts.Service != nil {
		status = opts.Service.Schema().Version()
	}
	return AppModel{
		router: router.New(home.New(opts.Service, opts.History)),
		status: status,
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.capturing() && m.router.AtHome() {
				return m, tea.Quit
			}
		case "esc":
			if !m.router.AtHome() {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) capturing() bool {
	c, ok := m.router.Active().(screen.InputCapturer)
	return ok && c.CapturingInput()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.status, m.width)

	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if !m.router.AtHome() {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		hints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "q", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	_, err := tea.NewProgram(NewAppModel(opts)).Run()
	return err
}
