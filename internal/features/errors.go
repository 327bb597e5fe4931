package features

import "fmt"

// InvalidTemporalInputError indicates the departure date and time do not
// form a valid instant.
type InvalidTemporalInputError struct {
	Date string
	Time string
	Err  error
}

func (e *InvalidTemporalInputError) Error() string {
	return fmt.Sprintf("invalid departure date/time %q %q: %v", e.Date, e.Time, e.Err)
}

func (e *InvalidTemporalInputError) Unwrap() error { return e.Err }

// UnknownScalerFeatureError indicates the schema's scaler has no entry for
// a numeric feature the encoder needs. This is a model/config mismatch.
type UnknownScalerFeatureError struct {
	Feature string
}

func (e *UnknownScalerFeatureError) Error() string {
	return fmt.Sprintf("scaler has no feature %q (model and configuration do not match)", e.Feature)
}

// ColumnNotFoundError indicates a numeric feature has no column in the
// schema, so its value has nowhere to go.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("schema has no column %q (model and configuration do not match)", e.Column)
}
