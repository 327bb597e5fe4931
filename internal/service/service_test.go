package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalo8115/proyecto-vuelos/internal/advisor"
	"github.com/lalo8115/proyecto-vuelos/internal/llm"
	"github.com/lalo8115/proyecto-vuelos/internal/metrics"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/predictor"
	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

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

func sampleQuery() pipeline.Query {
	return pipeline.Query{
		FlightCode:      " AB12 ",
		OriginCode:      "jfk",
		DestinationCode: "lax",
		DepartureDate:   "2024-03-04",
		DepartureTime:   "14:00",
	}
}

type fixture struct {
	svc     *Service
	mock    *predictor.Mock
	metrics *metrics.Metrics
	history store.PredictionRepo
}

func newFixture(t *testing.T, adv *advisor.Service, responses ...predictor.MockResponse) fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := fixture{
		mock:    predictor.NewMock(responses...),
		metrics: metrics.New(),
		history: st.PredictionRepo(),
	}
	f.svc, err = New(Options{
		Schema:    testSchema(t),
		Predictor: f.mock,
		Location:  time.UTC,
		Metrics:   f.metrics,
		History:   f.history,
		Advisor:   adv,
	})
	require.NoError(t, err)
	return f
}

func TestNew_ModelNotLoaded(t *testing.T) {
	_, err := New(Options{Predictor: predictor.NewMock()})
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	_, err = New(Options{Schema: testSchema(t)})
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestPredict_RecordsHistoryAndMetrics(t *testing.T) {
	f := newFixture(t, nil, predictor.MockResponse{Probability: 0.73})

	out, err := f.svc.Predict(context.Background(), Request{Query: sampleQuery(), Source: "cli"})
	require.NoError(t, err)
	assert.Equal(t, risk.High, out.Result.Band)
	assert.Equal(t, "AB12", out.Query.FlightCode)
	assert.Nil(t, out.Advisory)
	require.NotEmpty(t, out.ID)

	rec, err := f.history.Get(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, "cli", rec.Source)
	assert.Equal(t, "HIGH", rec.Band)
	assert.Equal(t, 14, rec.Hour)
	assert.Empty(t, rec.Error)

	n, err := testutil.GatherAndCount(f.metrics.Registry(), "vuelos_predictions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPredict_MissingFields(t *testing.T) {
	f := newFixture(t, nil)

	q := sampleQuery()
	q.DepartureTime = "  "
	q.OriginCode = ""
	_, err := f.svc.Predict(context.Background(), Request{Query: q})

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"origin", "time"}, missing.Fields)
	assert.Equal(t, "missing_fields", ErrorKind(err))
	assert.Equal(t, 0, f.mock.CallCount())

	list, err := f.history.List(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, list, "incomplete forms are not history")
}

func TestPredict_FailureIsRecorded(t *testing.T) {
	f := newFixture(t, nil, predictor.MockResponse{Err: &predictor.ErrUnavailable{Err: errors.New("down")}})

	_, err := f.svc.Predict(context.Background(), Request{Query: sampleQuery(), Source: "http"})
	var perr *pipeline.PredictionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "predictor", ErrorKind(err))

	list, err := f.history.List(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Error, "down")
	assert.Empty(t, list[0].Band)
}

func TestPredict_WithAdvisory(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"Riesgo alto.","tips":["Llegue temprano"]}`),
	})
	adv := advisor.NewService(provider, advisor.Config{}, nil)
	f := newFixture(t, adv, predictor.MockResponse{Probability: 0.6})
	assert.True(t, f.svc.AdvisorEnabled())

	out, err := f.svc.Predict(context.Background(), Request{Query: sampleQuery(), Explain: true})
	require.NoError(t, err)
	require.NotNil(t, out.Advisory)
	assert.Equal(t, "Riesgo alto.", out.Advisory.Summary)

	rec, err := f.history.Get(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Contains(t, rec.Advisory, "Llegue temprano")
}

func TestPredict_AdvisoryFailureKeepsPrediction(t *testing.T) {
	adv := advisor.NewService(llm.NewMockProvider(), advisor.Config{}, nil)
	f := newFixture(t, adv, predictor.MockResponse{Probability: 0.1})

	out, err := f.svc.Predict(context.Background(), Request{Query: sampleQuery(), Explain: true})
	require.NoError(t, err)
	assert.Nil(t, out.Advisory)
	assert.Equal(t, risk.Low, out.Result.Band)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pipeline.PredictionError{Err: context.DeadlineExceeded}, "timeout"},
		{&pipeline.PredictionError{Err: errors.New("x")}, "predictor"},
		{ErrModelNotLoaded, "not_loaded"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), tt.err.Error())
	}
}
