package advisor

import (
	"fmt"
	"strings"
	"time"
)

const systemPrompt = `You help air travelers make sense of a flight delay prediction.

Rules:
- You receive a flight, its route, departure date and time, and a predicted probability of delay with a risk band (LOW, MEDIUM, HIGH).
- Write a short summary that restates the risk plainly. Do not invent causes such as weather or strikes.
- Give at most 3 practical tips matched to the band. For LOW, one tip is enough.
- If the input says the flight or an airport was not seen in training, say the estimate is less reliable.
- Answer in the same language as the "Language" line.`

// buildUserMessage renders the prediction for the model.
func buildUserMessage(in Input, language string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Flight: %s\n", in.Query.FlightCode)
	fmt.Fprintf(&b, "Route: %s -> %s\n", strings.ToUpper(in.Query.OriginCode), strings.ToUpper(in.Query.DestinationCode))
	fmt.Fprintf(&b, "Departure: %s %s (%s, %s)\n",
		in.Query.DepartureDate, in.Query.DepartureTime,
		time.Weekday((in.Result.Temporal.Weekday+1)%7), time.Month(in.Result.Temporal.Month))
	fmt.Fprintf(&b, "Delay probability: %.2f%%\n", in.Result.Percent())
	fmt.Fprintf(&b, "Risk band: %s\n", in.Result.Band)

	if len(in.Result.Unmatched) > 0 {
		fmt.Fprintf(&b, "Not seen in training: %s\n", strings.Join(in.Result.Unmatched, ", "))
	}
	fmt.Fprintf(&b, "Language: %s", language)

	return b.String()
}
