package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/service"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/components"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the delay risk of one flight",
	Example: `  vuelos predict --flight AB12 --from JFK --to LAX --date 2024-03-04 --time 14:00
  vuelos predict --flight AB12 --from JFK --to LAX --date 2024-03-04 --time 14:00 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		q := pipeline.Query{}
		q.FlightCode, _ = flags.GetString("flight")
		q.OriginCode, _ = flags.GetString("from")
		q.DestinationCode, _ = flags.GetString("to")
		q.DepartureDate, _ = flags.GetString("date")
		q.DepartureTime, _ = flags.GetString("time")
		explain, _ := flags.GetBool("explain")
		asJSON, _ := flags.GetBool("json")

		o := wireOpts{advisor: explain}
		if flags.Changed("mock") {
			p, _ := flags.GetFloat64("mock")
			o.mock = &p
		}

		rt, err := wire(cmd.Context(), o)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc, err := rt.requireService()
		if err != nil {
			return err
		}
		if explain && !svc.AdvisorEnabled() {
			warnf("No LLM provider configured; --explain ignored.")
		}

		out, err := svc.Predict(cmd.Context(), service.Request{Query: q, Source: "cli", Explain: explain})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(newPredictionJSON(out))
		}
		fmt.Println(renderOutcome(out))
		return nil
	},
}

type predictionJSON struct {
	ID          string   `json:"id,omitempty"`
	Flight      string   `json:"flight"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Probability float64  `json:"probability"`
	Percent     float64  `json:"percent"`
	Band        string   `json:"band"`
	Message     string   `json:"message"`
	Unmatched   []string `json:"unmatched"`
	Advisory    any      `json:"advisory,omitempty"`
}

func newPredictionJSON(out *service.Outcome) predictionJSON {
	res := out.Result
	unmatched := res.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}
	p := predictionJSON{
		ID:          out.ID,
		Flight:      out.Query.FlightCode,
		Origin:      strings.ToUpper(out.Query.OriginCode),
		Destination: strings.ToUpper(out.Query.DestinationCode),
		Date:        out.Query.DepartureDate,
		Time:        out.Query.DepartureTime,
		Probability: res.Probability,
		Percent:     res.Percent(),
		Band:        string(res.Band),
		Message:     res.Band.Message(res.Percent()),
		Unmatched:   unmatched,
	}
	if out.Advisory != nil {
		p.Advisory = out.Advisory
	}
	return p
}

// renderOutcome draws the result card for the terminal.
func renderOutcome(out *service.Outcome) string {
	res := out.Result
	lines := []string{
		theme.BandStyle(res.Band).Render(res.Band.Icon() + " " + res.Band.Message(res.Percent())),
		"",
		components.ProbabilityBar{Probability: res.Probability, Width: 50}.View(),
		"",
		theme.Hint.Render(fmt.Sprintf("%s %s -> %s  %s %s  (%s)",
			out.Query.FlightCode,
			strings.ToUpper(out.Query.OriginCode),
			strings.ToUpper(out.Query.DestinationCode),
			out.Query.DepartureDate, out.Query.DepartureTime,
			time.Weekday((res.Temporal.Weekday+1)%7))),
	}
	if len(res.Unmatched) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.Accent).Render(
			"Not seen in training: "+strings.Join(res.Unmatched, ", ")))
	}
	if out.Advisory != nil {
		lines = append(lines, "", out.Advisory.String())
	}
	return theme.BandCard(res.Band).Render(strings.Join(lines, "\n"))
}

func init() {
	f := predictCmd.Flags()
	f.String("flight", "", "flight code, e.g. AB12")
	f.String("from", "", "origin airport code")
	f.String("to", "", "destination airport code")
	f.String("date", "", "departure date, YYYY-MM-DD")
	f.String("time", "", "departure time, HH:MM (24h)")
	f.Bool("explain", false, "ask the configured LLM for traveler advice")
	f.Bool("json", false, "print the result as JSON")
	f.Float64("mock", 0, "skip the model server and return this probability (0-1)")
}
