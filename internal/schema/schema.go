// Package schema holds the column layout and scaling parameters a trained
// delay classifier expects as input.
//
// A Schema is built once at startup and shared read-only by every
// prediction. Lookups by column or scaler feature name go through maps
// built at construction time, so per-query encoding never scans the
// column list.
package schema

import (
	"fmt"
	"math"
)

// Scaler carries the standardization tables. Mean and Scale are parallel
// to Features.
type Scaler struct {
	Features []string  `json:"features" yaml:"features"`
	Mean     []float64 `json:"mean" yaml:"mean"`
	Scale    []float64 `json:"scale" yaml:"scale"`
}

// Schema is the immutable, validated model configuration.
type Schema struct {
	version     string
	columns     []string
	scaler      Scaler
	columnIndex map[string]int
	scalerIndex map[string]int
}

// New validates columns and scaler and returns a Schema. The slices are
// copied; later changes by the caller do not affect the Schema.
func New(columns []string, scaler Scaler) (*Schema, error) {
	var problems []string

	if len(columns) == 0 {
		problems = append(problems, "columns is empty")
	}

	columnIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			problems = append(problems, fmt.Sprintf("columns[%d] is empty", i))
			continue
		}
		if prev, dup := columnIndex[c]; dup {
			problems = append(problems, fmt.Sprintf("column %q repeated at %d and %d", c, prev, i))
			continue
		}
		columnIndex[c] = i
	}

	n := len(scaler.Features)
	if len(scaler.Mean) != n || len(scaler.Scale) != n {
		problems = append(problems, fmt.Sprintf(
			"scaler lengths differ: features=%d mean=%d scale=%d",
			n, len(scaler.Mean), len(scaler.Scale)))
	}

	scalerIndex := make(map[string]int, n)
	for i, f := range scaler.Features {
		if prev, dup := scalerIndex[f]; dup {
			problems = append(problems, fmt.Sprintf("scaler feature %q repeated at %d and %d", f, prev, i))
			continue
		}
		scalerIndex[f] = i
		if _, ok := columnIndex[f]; !ok {
			problems = append(problems, fmt.Sprintf("scaler feature %q is not a column", f))
		}
		if i < len(scaler.Mean) && !isFinite(scaler.Mean[i]) {
			problems = append(problems, fmt.Sprintf("scaler mean for %q is not finite", f))
		}
		if i < len(scaler.Scale) && (!isFinite(scaler.Scale[i]) || scaler.Scale[i] == 0) {
			problems = append(problems, fmt.Sprintf("scaler scale for %q must be finite and non-zero", f))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return &Schema{
		columns:     append([]string(nil), columns...),
		scaler:      copyScaler(scaler),
		columnIndex: columnIndex,
		scalerIndex: scalerIndex,
	}, nil
}

// Len is the length of every feature vector built against this schema.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the ordered column names.
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Scaler returns a copy of the scaling tables.
func (s *Schema) Scaler() Scaler {
	return copyScaler(s.scaler)
}

// Version is the document version, or "" when the document had none.
func (s *Schema) Version() string {
	return s.version
}

// ColumnIndex returns the position of name in the column list.
func (s *Schema) ColumnIndex(name string) (int, bool) {
	i, ok := s.columnIndex[name]
	return i, ok
}

// ScalerParams returns the mean and scale for a standardized feature.
func (s *Schema) ScalerParams(name string) (mean, scale float64, ok bool) {
	i, ok := s.scalerIndex[name]
	if !ok {
		return 0, 0, false
	}
	return s.scaler.Mean[i], s.scaler.Scale[i], true
}

func copyScaler(sc Scaler) Scaler {
	return Scaler{
		Features: append([]string(nil), sc.Features...),
		Mean:     append([]float64(nil), sc.Mean...),
		Scale:    append([]float64(nil), sc.Scale...),
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
