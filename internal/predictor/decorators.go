package predictor

import (
	"context"
	"log/slog"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
	"github.com/lalo8115/proyecto-vuelos/internal/logging"
)

// LoggingPredictor logs every call at debug level and failures at warn.
type LoggingPredictor struct {
	inner Predictor
	log   *slog.Logger
}

// WithLogging wraps p with structured logging.
func WithLogging(p Predictor, log *slog.Logger) Predictor {
	return &LoggingPredictor{inner: p, log: log}
}

func (l *LoggingPredictor) Predict(ctx context.Context, v features.Vector) (float64, error) {
	start := time.Now()
	p, err := l.inner.Predict(ctx, v)
	elapsed := time.Since(start)

	if err != nil {
		l.log.WarnContext(ctx, "predictor call failed",
			slog.Duration("elapsed", elapsed),
			slog.Int("features", len(v)),
			logging.Err(err))
		return p, err
	}
	l.log.DebugContext(ctx, "predictor call",
		slog.Duration("elapsed", elapsed),
		slog.Int("features", len(v)),
		slog.Int("active", v.NonZero()),
		slog.Float64("probability", p))
	return p, nil
}

// Observer receives the outcome of each predictor round trip.
// *metrics.Metrics satisfies it.
type Observer interface {
	ObservePredictorCall(d time.Duration, err error)
}

type metricsPredictor struct {
	inner Predictor
	obs   Observer
}

// WithMetrics reports latency and status of every call to obs.
func WithMetrics(p Predictor, obs Observer) Predictor {
	return &metricsPredictor{inner: p, obs: obs}
}

func (m *metricsPredictor) Predict(ctx context.Context, v features.Vector) (float64, error) {
	start := time.Now()
	p, err := m.inner.Predict(ctx, v)
	m.obs.ObservePredictorCall(time.Since(start), err)
	return p, err
}
