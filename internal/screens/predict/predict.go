// Package predict is the interactive flight form: five inputs, one
// prediction, and an optional advisory that arrives later.
package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/advisor"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/screen"
	"github.com/lalo8115/proyecto-vuelos/internal/service"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/components"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/layout"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

const advicePollInterval = 250 * time.Millisecond

// predictionDoneMsg carries the service result back to the screen.
type predictionDoneMsg struct {
	Outcome *service.Outcome
	Err     error
}

// adviceTickMsg polls the advisor for a finished advisory.
type adviceTickMsg time.Time

// PredictScreen collects a query and shows its delay risk.
type PredictScreen struct {
	svc     *service.Service
	advisor *advisor.Service

	fields []components.Field
	focus  int

	running  bool
	outcome  *service.Outcome
	errMsg   string
	advice   *advisor.Advisory
	advising bool
}

var _ screen.Screen = (*PredictScreen)(nil)
var _ screen.KeyHintProvider = (*PredictScreen)(nil)
var _ screen.InputCapturer = (*PredictScreen)(nil)

// New creates the form. svc may be nil, in which case submitting reports
// that the model is not loaded.
func New(svc *service.Service) *PredictScreen {
	s := &PredictScreen{
		svc: svc,
		fields: []components.Field{
			components.NewField("flight", "Flight", "AB12", 10, false),
			components.NewField("origin", "From", "JFK", 4, true),
			components.NewField("destination", "To", "LAX", 4, true),
			components.NewField("date", "Date", "2024-03-04", 10, false),
			components.NewField("time", "Time", "14:00", 5, false),
		},
	}
	if svc != nil {
		s.advisor = svc.Advisor()
	}
	return s
}

func (s *PredictScreen) Init() tea.Cmd {
	return s.fields[0].Focus()
}

func (s *PredictScreen) Title() string {
	return "Delay Prediction"
}

func (s *PredictScreen) CapturingInput() bool {
	return true
}

func (s *PredictScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Predict"},
		{Key: "Ctrl+R", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

// Query returns the form contents.
func (s *PredictScreen) Query() pipeline.Query {
	return pipeline.Query{
		FlightCode:      s.fields[0].Value(),
		OriginCode:      s.fields[1].Value(),
		DestinationCode: s.fields[2].Value(),
		DepartureDate:   s.fields[3].Value(),
		DepartureTime:   s.fields[4].Value(),
	}
}

func (s *PredictScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case predictionDoneMsg:
		return s, s.handleDone(msg)

	case adviceTickMsg:
		if !s.advising {
			return s, nil
		}
		if a, ok := s.advisor.ConsumeAdvice(); ok {
			s.advice = a
			s.advising = false
			return s, nil
		}
		return s, pollAdvice()

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return s, s.moveFocus(1)
		case "shift+tab", "up":
			return s, s.moveFocus(-1)
		case "enter":
			return s, s.submit()
		case "ctrl+r":
			return s, s.reset()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *PredictScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.fields)) % len(s.fields)
	return s.fields[s.focus].Focus()
}

func (s *PredictScreen) reset() tea.Cmd {
	for i := range s.fields {
		s.fields[i].SetValue("")
		s.fields[i].Invalid = false
	}
	s.outcome, s.advice, s.errMsg = nil, nil, ""
	s.advising = false
	s.fields[s.focus].Blur()
	s.focus = 0
	return s.fields[0].Focus()
}

func (s *PredictScreen) submit() tea.Cmd {
	if s.running {
		return nil
	}
	if s.svc == nil {
		s.errMsg = service.ErrModelNotLoaded.Error()
		return nil
	}

	q := s.Query()
	if missing := q.Missing(); len(missing) > 0 {
		s.markMissing(missing)
		s.errMsg = "Please complete all fields"
		return nil
	}

	s.running = true
	s.errMsg = ""
	s.outcome, s.advice = nil, nil
	svc := s.svc
	return func() tea.Msg {
		out, err := svc.Predict(context.Background(), service.Request{Query: q, Source: "tui"})
		return predictionDoneMsg{Outcome: out, Err: err}
	}
}

func (s *PredictScreen) markMissing(missing []string) {
	set := make(map[string]bool, len(missing))
	for _, m := range missing {
		set[m] = true
	}
	for i := range s.fields {
		s.fields[i].Invalid = set[s.fields[i].Name]
	}
}

func (s *PredictScreen) handleDone(msg predictionDoneMsg) tea.Cmd {
	s.running = false
	if msg.Err != nil {
		s.errMsg = describeError(msg.Err)
		return nil
	}

	s.outcome = msg.Outcome
	if !s.advisor.Enabled() {
		return nil
	}
	s.advising = true
	s.advisor.RequestAdvice(context.Background(), advisor.Input{
		Query:  msg.Outcome.Query,
		Result: msg.Outcome.Result,
	})
	return pollAdvice()
}

func pollAdvice() tea.Cmd {
	return tea.Tick(advicePollInterval, func(t time.Time) tea.Msg {
		return adviceTickMsg(t)
	})
}

// describeError turns a service error into one line for the form.
func describeError(err error) string {
	var missing *service.MissingFieldsError
	switch kind := service.ErrorKind(err); {
	case errors.As(err, &missing):
		return "Please complete all fields"
	case kind == "invalid_input":
		return "Invalid date or time: use YYYY-MM-DD and HH:MM"
	case kind == "config_mismatch":
		return "The loaded schema does not match the model: " + err.Error()
	case kind == "timeout":
		return "The model server did not answer in time"
	default:
		return err.Error()
	}
}

func (s *PredictScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Flight delay risk"))
	b.WriteString("\n\n")

	for _, f := range s.fields {
		b.WriteString("  " + f.View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case s.running:
		b.WriteString(theme.Hint.Render("  Predicting..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("  " + s.errMsg))
	case s.outcome != nil:
		b.WriteString(s.renderResult(width))
	default:
		b.WriteString(theme.Hint.Render("  Fill in every field and press Enter."))
	}
	return b.String()
}

func (s *PredictScreen) renderResult(width int) string {
	res := s.outcome.Result
	cardWidth := min(width-4, 72)

	var lines []string
	lines = append(lines,
		theme.BandStyle(res.Band).Render(res.Band.Icon()+" "+res.Band.Message(res.Percent())),
		"",
		components.ProbabilityBar{Probability: res.Probability, Width: cardWidth - 6}.View(),
		"",
		theme.Hint.Render(fmt.Sprintf("%s %s -> %s  %s  (month %d, %s, hour %d)",
			s.outcome.Query.FlightCode,
			strings.ToUpper(s.outcome.Query.OriginCode),
			strings.ToUpper(s.outcome.Query.DestinationCode),
			s.outcome.Query.DepartureDate,
			res.Temporal.Month,
			time.Weekday((res.Temporal.Weekday+1)%7),
			res.Temporal.Hour)),
	)

	if len(res.Unmatched) > 0 {
		lines = append(lines, "",
			lipgloss.NewStyle().Foreground(theme.Accent).Render(
				"Not seen in training: "+strings.Join(res.Unmatched, ", ")))
	}

	switch {
	case s.advising:
		lines = append(lines, "", theme.Hint.Render("Preparing advice..."))
	case s.advice != nil:
		lines = append(lines, "", theme.Body.Render(s.advice.Summary))
		for _, tip := range s.advice.Tips {
			lines = append(lines, theme.Body.Render("  - "+tip))
		}
	}

	return lipgloss.NewStyle().MarginLeft(2).Render(
		theme.BandCard(res.Band).Width(cardWidth).Render(strings.Join(lines, "\n")))
}
