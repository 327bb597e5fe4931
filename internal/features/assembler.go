package features

import (
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/schema"
)

// Vector is a model input aligned to the schema columns.
type Vector []float64

// NonZero counts the populated slots.
func (v Vector) NonZero() int {
	n := 0
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return n
}

// Numeric is a standardized value destined for a named column.
type Numeric struct {
	Column string
	Value  float64
}

// Assemble writes numeric values and one-hot activations into a zeroed
// vector of schema length. Positions are independent, so order of the
// inputs does not matter.
func Assemble(s *schema.Schema, nums []Numeric, acts []Activation) (Vector, error) {
	v := make(Vector, s.Len())
	for _, n := range nums {
		i, ok := s.ColumnIndex(n.Column)
		if !ok {
			return nil, &ColumnNotFoundError{Column: n.Column}
		}
		v[i] = n.Value
	}
	for _, a := range acts {
		if a.Index < 0 || a.Index >= len(v) {
			return nil, &ColumnNotFoundError{Column: a.Column}
		}
		v[a.Index] = 1
	}
	return v, nil
}

// Query is the raw, user-entered flight description.
type Query struct {
	FlightCode      string `json:"flight"`
	OriginCode      string `json:"origin"`
	DestinationCode string `json:"destination"`
	DepartureDate   string `json:"date"`
	DepartureTime   string `json:"time"`
}

// Missing returns the names of empty fields. Callers check this before
// encoding.
func (q Query) Missing() []string {
	var out []string
	for _, f := range []struct {
		name, value string
	}{
		{"flight", q.FlightCode},
		{"origin", q.OriginCode},
		{"destination", q.DestinationCode},
		{"date", q.DepartureDate},
		{"time", q.DepartureTime},
	} {
		if f.value == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// Encoding is the outcome of turning a Query into a model input.
type Encoding struct {
	Vector   Vector
	Temporal Temporal

	// Active lists the one-hot columns set to 1.
	Active []string
	// Unmatched lists one-hot columns the model never saw.
	Unmatched []string
}

// EncodeQuery runs the full encoding: temporal decomposition, scaling of
// the three numeric features, one-hot lookups and assembly.
func EncodeQuery(s *schema.Schema, l Layout, q Query, loc *time.Location) (*Encoding, error) {
	tp, err := Decompose(q.DepartureDate, q.DepartureTime, loc)
	if err != nil {
		return nil, err
	}

	raw := []struct {
		column string
		value  int
	}{
		{l.Month, tp.Month},
		{l.Weekday, tp.Weekday},
		{l.Hour, tp.Hour},
	}
	nums := make([]Numeric, 0, len(raw))
	for _, r := range raw {
		z, err := Scale(s, r.column, float64(r.value))
		if err != nil {
			return nil, err
		}
		nums = append(nums, Numeric{Column: r.column, Value: z})
	}

	codes := map[Category]string{
		CategoryFlight:      q.FlightCode,
		CategoryOrigin:      q.OriginCode,
		CategoryDestination: q.DestinationCode,
	}
	enc := &Encoding{Temporal: tp}
	var acts []Activation
	for _, c := range Categories {
		a, ok := Encode(s, l, c, codes[c])
		if !ok {
			if a.Column != "" {
				enc.Unmatched = append(enc.Unmatched, a.Column)
			}
			continue
		}
		acts = append(acts, a)
		enc.Active = append(enc.Active, a.Column)
	}

	v, err := Assemble(s, nums, acts)
	if err != nil {
		return nil, err
	}
	enc.Vector = v
	return enc, nil
}
