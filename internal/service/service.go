// Package service wires a loaded model to the outer surfaces: it validates
// the query, runs the pipeline, records metrics and history, and attaches
// an optional advisory.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/advisor"
	"github.com/lalo8115/proyecto-vuelos/internal/features"
	"github.com/lalo8115/proyecto-vuelos/internal/logging"
	"github.com/lalo8115/proyecto-vuelos/internal/metrics"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

// ErrModelNotLoaded is returned when the schema or predictor is missing.
var ErrModelNotLoaded = errors.New("model not loaded")

// MissingFieldsError lists required query fields left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("please complete all fields: missing %s", strings.Join(e.Fields, ", "))
}

// Options configures a Service. Schema and Predictor are required.
type Options struct {
	Schema    *schema.Schema
	Predictor pipeline.Predictor
	Location  *time.Location
	Layout    *features.Layout

	Metrics *metrics.Metrics
	History store.PredictionRepo
	Advisor *advisor.Service
	Log     *slog.Logger
}

// Service runs predictions for every front end.
type Service struct {
	schema    *schema.Schema
	predictor pipeline.Predictor
	opts      []pipeline.Option

	metrics *metrics.Metrics
	history store.PredictionRepo
	advisor *advisor.Service
	log     *slog.Logger
}

// New validates o and builds a Service.
func New(o Options) (*Service, error) {
	if o.Schema == nil || o.Predictor == nil {
		return nil, ErrModelNotLoaded
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}

	var opts []pipeline.Option
	if o.Location != nil {
		opts = append(opts, pipeline.WithLocation(o.Location))
	}
	if o.Layout != nil {
		opts = append(opts, pipeline.WithLayout(*o.Layout))
	}

	return &Service{
		schema:    o.Schema,
		predictor: o.Predictor,
		opts:      opts,
		metrics:   o.Metrics,
		history:   o.History,
		advisor:   o.Advisor,
		log:       o.Log,
	}, nil
}

// Schema returns the loaded schema.
func (s *Service) Schema() *schema.Schema {
	return s.schema
}

// AdvisorEnabled reports whether Explain requests can be honoured.
func (s *Service) AdvisorEnabled() bool {
	return s.advisor.Enabled()
}

// Advisor returns the advisory service, nil when disabled.
func (s *Service) Advisor() *advisor.Service {
	return s.advisor
}

// Request carries per-call options.
type Request struct {
	Query   pipeline.Query
	Source  string // cli, tui or http
	Explain bool   // ask the advisor
}

// Outcome is a successful prediction.
type Outcome struct {
	// ID is the history record ID, empty when history is disabled.
	ID       string
	Query    pipeline.Query
	Result   *pipeline.Result
	Advisory *advisor.Advisory
}

// Predict runs one query end to end.
func (s *Service) Predict(ctx context.Context, req Request) (*Outcome, error) {
	q := normalize(req.Query)
	if missing := q.Missing(); len(missing) > 0 {
		err := &MissingFieldsError{Fields: missing}
		s.observeError(err)
		return nil, err
	}

	start := time.Now()
	res, err := pipeline.Run(ctx, q, s.schema, s.predictor, s.opts...)
	if err != nil {
		s.observeError(err)
		s.log.WarnContext(ctx, "prediction failed",
			slog.String("flight", q.FlightCode),
			slog.String("kind", ErrorKind(err)),
			logging.Err(err))
		s.record(ctx, req.Source, q, nil, nil, err)
		return nil, err
	}

	out := &Outcome{Query: q, Result: res}
	if s.metrics != nil {
		s.metrics.ObservePrediction(string(res.Band), res.Unmatched)
	}
	s.log.InfoContext(ctx, "prediction",
		slog.String("flight", q.FlightCode),
		slog.String("route", q.OriginCode+"-"+q.DestinationCode),
		slog.Float64("probability", res.Probability),
		slog.String("band", string(res.Band)),
		slog.Int("unmatched", len(res.Unmatched)),
		slog.Duration("elapsed", time.Since(start)))

	if req.Explain {
		out.Advisory = s.advisor.TryAdvise(ctx, advisor.Input{Query: q, Result: res})
	}
	out.ID = s.record(ctx, req.Source, q, res, out.Advisory, nil)
	return out, nil
}

// record appends to history. Failures are logged, never returned.
func (s *Service) record(ctx context.Context, source string, q pipeline.Query, res *pipeline.Result, adv *advisor.Advisory, perr error) string {
	if s.history == nil {
		return ""
	}

	p := &store.Prediction{
		Source:      source,
		Flight:      q.FlightCode,
		Origin:      q.OriginCode,
		Destination: q.DestinationCode,
		Date:        q.DepartureDate,
		Time:        q.DepartureTime,
	}
	if res != nil {
		p.Month, p.Weekday, p.Hour = res.Temporal.Month, res.Temporal.Weekday, res.Temporal.Hour
		p.Probability = res.Probability
		p.Band = string(res.Band)
		p.Unmatched = res.Unmatched
	}
	if adv != nil {
		p.Advisory = adv.String()
	}
	if perr != nil {
		p.Error = perr.Error()
	}

	// A cancelled request still gets its history row.
	if err := s.history.Append(context.WithoutCancel(ctx), p); err != nil {
		s.log.WarnContext(ctx, "failed to record prediction", logging.Err(err))
		return ""
	}
	return p.ID
}

func (s *Service) observeError(err error) {
	if s.metrics != nil {
		s.metrics.ObserveError(ErrorKind(err))
	}
}

// ErrorKind classifies err for metrics, logs and HTTP status mapping.
func ErrorKind(err error) string {
	var missing *MissingFieldsError
	var perr *pipeline.PredictionError
	switch {
	case errors.As(err, &missing):
		return "missing_fields"
	case pipeline.IsInvalidInput(err):
		return "invalid_input"
	case pipeline.IsConfigMismatch(err):
		return "config_mismatch"
	case errors.As(err, &perr) && perr.Timeout():
		return "timeout"
	case errors.As(err, &perr):
		return "predictor"
	case errors.Is(err, ErrModelNotLoaded):
		return "not_loaded"
	default:
		return "internal"
	}
}

func normalize(q pipeline.Query) pipeline.Query {
	q.FlightCode = strings.TrimSpace(q.FlightCode)
	q.OriginCode = strings.TrimSpace(q.OriginCode)
	q.DestinationCode = strings.TrimSpace(q.DestinationCode)
	q.DepartureDate = strings.TrimSpace(q.DepartureDate)
	q.DepartureTime = strings.TrimSpace(q.DepartureTime)
	return q
}
