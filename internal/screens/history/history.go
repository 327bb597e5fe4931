// Package history lists past predictions from the local store.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/router"
	"github.com/lalo8115/proyecto-vuelos/internal/screen"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/layout"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Predictions []store.Prediction
	Counts      map[string]int
	Err         error
}

// HistoryScreen displays recent predictions, newest first.
type HistoryScreen struct {
	repo        store.PredictionRepo
	predictions []store.Prediction
	counts      map[string]int
	selected    int
	expanded    map[int]bool
	loaded      bool
	errMsg      string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.PredictionRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		ctx := context.Background()

		list, err := repo.List(ctx, store.QueryOpts{Limit: pageSize})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		counts, err := repo.CountByBand(ctx)
		if err != nil {
			return historyLoadedMsg{Predictions: list}
		}
		return historyLoadedMsg{Predictions: list, Counts: counts}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.predictions = msg.Predictions
			s.counts = msg.Counts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.predictions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.predictions) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  No predictions yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	if s.counts != nil {
		b.WriteString("  " + renderCounts(s.counts) + "\n\n")
	}

	for i, p := range s.predictions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		outcome := theme.ErrorText.Render("failed")
		if p.Error == "" {
			band := risk.Band(p.Band)
			outcome = theme.BandStyle(band).Render(fmt.Sprintf("%-6s %6.2f%%", p.Band, p.Probability*100))
		}

		line := fmt.Sprintf("%s%s  %-8s %s-%s  %s %s  ",
			prefix, p.CreatedAt.Local().Format("Jan 02 15:04"),
			p.Flight, p.Origin, p.Destination, p.Date, p.Time)
		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + outcome + "\n")

		if s.expanded[i] {
			b.WriteString(renderDetail(p))
		}
	}
	return b.String()
}

func renderCounts(counts map[string]int) string {
	parts := make([]string, 0, 3)
	for _, band := range []risk.Band{risk.High, risk.Medium, risk.Low} {
		parts = append(parts, theme.BandStyle(band).Render(fmt.Sprintf("%s %d", band.Label(), counts[string(band)])))
	}
	return strings.Join(parts, "   ")
}

func renderDetail(p store.Prediction) string {
	var lines []string
	if p.Error != "" {
		lines = append(lines, "Error: "+p.Error)
	} else {
		lines = append(lines, fmt.Sprintf("month %d  weekday %d  hour %d", p.Month, p.Weekday, p.Hour))
		if len(p.Unmatched) > 0 {
			lines = append(lines, "Not seen in training: "+strings.Join(p.Unmatched, ", "))
		}
	}
	if p.Advisory != "" {
		lines = append(lines, p.Advisory)
	}
	lines = append(lines, "id "+p.ID+"  via "+p.Source)

	var b strings.Builder
	for _, l := range strings.Split(strings.Join(lines, "\n"), "\n") {
		b.WriteString(theme.Hint.Render("      "+l) + "\n")
	}
	return b.String()
}
