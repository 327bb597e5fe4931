// Package pipeline runs one delay prediction end to end: encode the query,
// call the predictor once, classify the result.
//
// Run is a pure function of its arguments. It does no logging and keeps
// no state between calls; the Schema is only read.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
)

// Query is the raw flight description entered by the user.
type Query = features.Query

// Predictor is the trained classifier. Predict returns the delay
// probability as a FRACTION in [0, 1].
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)
}

// Result is the outcome of a single query.
type Result struct {
	// Probability is the fractional delay probability (0-1).
	Probability float64
	Band        risk.Band
	Temporal    features.Temporal

	// Unmatched lists one-hot columns for codes the model never saw.
	Unmatched []string
}

// Percent returns Probability in percent.
func (r *Result) Percent() float64 {
	return r.Probability * 100
}

// PredictionError wraps a failure of the predictor call, including
// cancellation and timeouts.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Timeout reports whether the predictor call ran out of time.
func (e *PredictionError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ErrOutOfRange is returned (wrapped in PredictionError) when the
// predictor emits a value that is not a probability.
var ErrOutOfRange = errors.New("predictor output is not a probability in [0,1]")

type options struct {
	layout   features.Layout
	location *time.Location
}

// Option customises Run.
type Option func(*options)

// WithLayout overrides the schema column names used for encoding.
func WithLayout(l features.Layout) Option {
	return func(o *options) { o.layout = l }
}

// WithLocation sets the zone the departure date and time are read in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// Run encodes q against s, calls p exactly once and classifies the
// probability. Field presence is the caller's responsibility (see
// Query.Missing). On error no Result is returned.
func Run(ctx context.Context, q Query, s *schema.Schema, p Predictor, opts ...Option) (*Result, error) {
	o := options{layout: features.DefaultLayout, location: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	enc, err := features.EncodeQuery(s, o.layout, q, o.location)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, &PredictionError{Err: err}
	}
	prob, err := p.Predict(ctx, enc.Vector)
	if err != nil {
		return nil, &PredictionError{Err: err}
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return nil, &PredictionError{Err: fmt.Errorf("%w: got %v", ErrOutOfRange, prob)}
	}

	return &Result{
		Probability: prob,
		Band:        risk.FromProbability(prob),
		Temporal:    enc.Temporal,
		Unmatched:   enc.Unmatched,
	}, nil
}

// IsConfigMismatch reports whether err means the schema does not fit the
// model (a missing scaler feature or column).
func IsConfigMismatch(err error) bool {
	var uerr *features.UnknownScalerFeatureError
	var cerr *features.ColumnNotFoundError
	return errors.As(err, &uerr) || errors.As(err, &cerr)
}

// IsInvalidInput reports whether err was caused by the user's input.
func IsInvalidInput(err error) bool {
	var terr *features.InvalidTemporalInputError
	return errors.As(err, &terr)
}
