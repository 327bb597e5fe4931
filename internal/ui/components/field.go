package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

// Field is a labelled single-line input.
type Field struct {
	Name  string
	Label string
	Model textinput.Model

	// Upper folds typed letters to upper case (airport codes).
	Upper   bool
	Invalid bool
}

// NewField creates an unfocused field.
func NewField(name, label, placeholder string, limit int, upper bool) Field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return Field{Name: name, Label: label, Model: ti, Upper: upper}
}

// Update forwards msg to the input.
func (f Field) Update(msg tea.Msg) (Field, tea.Cmd) {
	var cmd tea.Cmd
	f.Model, cmd = f.Model.Update(msg)
	if f.Upper {
		if v := f.Model.Value(); v != strings.ToUpper(v) {
			f.Model.SetValue(strings.ToUpper(v))
		}
	}
	if f.Invalid && f.Value() != "" {
		f.Invalid = false
	}
	return f, cmd
}

// Focus focuses the input.
func (f *Field) Focus() tea.Cmd {
	return f.Model.Focus()
}

// Blur removes focus.
func (f *Field) Blur() {
	f.Model.Blur()
}

// Value returns the trimmed input.
func (f Field) Value() string {
	return strings.TrimSpace(f.Model.Value())
}

// SetValue replaces the input text.
func (f *Field) SetValue(v string) {
	f.Model.SetValue(v)
}

// View renders "Label  [input]" with a marker when invalid.
func (f Field) View() string {
	label := theme.Label.Render(f.Label)
	if f.Model.Focused() {
		label = theme.Label.Foreground(theme.Primary).Bold(true).Render(f.Label)
	}
	view := label + " " + f.Model.View()
	if f.Invalid {
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("required")
	}
	return view
}
