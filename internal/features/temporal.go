// Package features turns a raw flight query into the numeric vector the
// delay model expects, in schema column order.
package features

import (
	"errors"
	"time"
)

// Input layouts for the departure fields.
const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	TimeLayoutSeconds = "15:04:05"
)

// Temporal holds the calendar parts the model was trained on.
type Temporal struct {
	Month   int // 1-12
	Weekday int // 0=Monday ... 6=Sunday
	Hour    int // 0-23, local
}

// Decompose combines a date and a time of day in loc and extracts month,
// Monday-first weekday and local hour. A nil loc means time.Local.
func Decompose(date, clock string, loc *time.Location) (Temporal, error) {
	if loc == nil {
		loc = time.Local
	}
	if date == "" || clock == "" {
		return Temporal{}, &InvalidTemporalInputError{Date: date, Time: clock, Err: errors.New("date and time are required")}
	}

	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return Temporal{}, &InvalidTemporalInputError{Date: date, Time: clock, Err: err}
	}

	c, err := time.Parse(TimeLayout, clock)
	if err != nil {
		var serr error
		if c, serr = time.Parse(TimeLayoutSeconds, clock); serr != nil {
			return Temporal{}, &InvalidTemporalInputError{Date: date, Time: clock, Err: err}
		}
	}

	instant := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc)
	return DecomposeTime(instant), nil
}

// DecomposeTime extracts the temporal parts of an already combined instant,
// read in the instant's own location.
func DecomposeTime(t time.Time) Temporal {
	return Temporal{
		Month:   int(t.Month()),
		Weekday: MondayFirst(t.Weekday()),
		Hour:    t.Hour(),
	}
}

// MondayFirst converts a Sunday-first weekday to a Monday-first index.
func MondayFirst(w time.Weekday) int {
	return (int(w) + 6) % 7
}
