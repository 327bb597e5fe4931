package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
)

// stubPredictor records the vectors it sees and returns a fixed answer.
type stubPredictor struct {
	prob  float64
	err   error
	calls []features.Vector
}

func (s *stubPredictor) Predict(_ context.Context, v features.Vector) (float64, error) {
	s.calls = append(s.calls, v)
	return s.prob, s.err
}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		[]string{"MES", "DIA_SEMANA", "HORA_SALIDA", "Flight_AB12", "PortFrom_JFK", "PortTo_LAX"},
		schema.Scaler{
			Features: []string{"MES", "DIA_SEMANA", "HORA_SALIDA"},
			Mean:     []float64{6, 3, 12},
			Scale:    []float64{3, 2, 5},
		},
	)
	require.NoError(t, err)
	return s
}

func sampleQuery() Query {
	return Query{
		FlightCode:      "AB12",
		OriginCode:      "jfk",
		DestinationCode: "lax",
		DepartureDate:   "2024-03-04",
		DepartureTime:   "14:00",
	}
}

func TestRun_EndToEnd(t *testing.T) {
	p := &stubPredictor{prob: 0.73}

	res, err := Run(context.Background(), sampleQuery(), testSchema(t), p, WithLocation(time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 0.73, res.Probability)
	assert.Equal(t, risk.High, res.Band)
	assert.InDelta(t, 73.0, res.Percent(), 1e-9)
	assert.Equal(t, features.Temporal{Month: 3, Weekday: 0, Hour: 14}, res.Temporal)

	require.Len(t, p.calls, 1)
	want := []float64{-1.0, -1.5, 0.4, 1, 1, 1}
	for i := range want {
		assert.InDelta(t, want[i], p.calls[0][i], 1e-12)
	}
}

func TestRun_UnknownCategoryIsNotAnError(t *testing.T) {
	p := &stubPredictor{prob: 0.1}
	q := sampleQuery()
	q.FlightCode = "ZZ99"

	res, err := Run(context.Background(), q, testSchema(t), p, WithLocation(time.UTC))
	require.NoError(t, err)
	assert.Equal(t, risk.Low, res.Band)
	assert.Equal(t, []string{"Flight_ZZ99"}, res.Unmatched)

	require.Len(t, p.calls, 1)
	assert.Len(t, p.calls[0], 6)
	assert.Equal(t, 0.0, p.calls[0][3])
}

func TestRun_InvalidTemporalSkipsPredictor(t *testing.T) {
	p := &stubPredictor{prob: 0.5}
	q := sampleQuery()
	q.DepartureDate = "2024-02-30"

	res, err := Run(context.Background(), q, testSchema(t), p)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsInvalidInput(err))
	assert.False(t, IsConfigMismatch(err))
	assert.Empty(t, p.calls)
}

func TestRun_ConfigMismatch(t *testing.T) {
	p := &stubPredictor{prob: 0.5}
	layout := features.DefaultLayout
	layout.Hour = "HORA"

	res, err := Run(context.Background(), sampleQuery(), testSchema(t), p, WithLayout(layout))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsConfigMismatch(err))
	assert.Empty(t, p.calls)

	var perr *PredictionError
	assert.False(t, errors.As(err, &perr))
}

func TestRun_PredictorFailure(t *testing.T) {
	p := &stubPredictor{err: errors.New("model server down")}

	res, err := Run(context.Background(), sampleQuery(), testSchema(t), p)
	require.Error(t, err)
	assert.Nil(t, res)

	var perr *PredictionError
	require.True(t, errors.As(err, &perr))
	assert.False(t, perr.Timeout())
	assert.Contains(t, err.Error(), "model server down")
}

func TestRun_PredictorTimeout(t *testing.T) {
	p := &stubPredictor{err: context.DeadlineExceeded}

	_, err := Run(context.Background(), sampleQuery(), testSchema(t), p)
	var perr *PredictionError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.Timeout())
}

func TestRun_CancelledContext(t *testing.T) {
	p := &stubPredictor{prob: 0.5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, sampleQuery(), testSchema(t), p)
	var perr *PredictionError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.calls)
}

func TestRun_OutOfRangeOutput(t *testing.T) {
	for _, v := range []float64{-0.01, 1.5, 73, math.NaN()} {
		p := &stubPredictor{prob: v}
		res, err := Run(context.Background(), sampleQuery(), testSchema(t), p)
		require.Error(t, err, "value %v", v)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestRun_Bands(t *testing.T) {
	tests := []struct {
		prob float64
		want risk.Band
	}{
		{0, risk.Low},
		{0.15, risk.Low},
		{0.35, risk.Medium},
		{0.5, risk.Medium},
		{0.51, risk.High},
		{1, risk.High},
	}
	for _, tt := range tests {
		res, err := Run(context.Background(), sampleQuery(), testSchema(t), &stubPredictor{prob: tt.prob})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Band, "prob %v", tt.prob)
	}
}
