package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
	"github.com/lalo8115/proyecto-vuelos/internal/llm"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/risk"
)

func sampleInput() Input {
	return Input{
		Query: pipeline.Query{
			FlightCode:      "AA100",
			OriginCode:      "jfk",
			DestinationCode: "LAX",
			DepartureDate:   "2024-03-15",
			DepartureTime:   "10:00",
		},
		Result: &pipeline.Result{
			Probability: 0.73,
			Band:        risk.High,
			Temporal:    features.Temporal{Month: 3, Weekday: 4, Hour: 10},
			Unmatched:   []string{"Flight_AA100"},
		},
	}
}

func TestAdvise(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"  Alto riesgo de demora. ","tips":["Llegue temprano","Revise la app"]}`),
	})
	svc := NewService(mock, Config{}, nil)

	a, err := svc.Advise(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "Alto riesgo de demora.", a.Summary)
	assert.Len(t, a.Tips, 2)
	assert.Contains(t, a.String(), "- Llegue temprano")

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, AdvisorySchema, req.Schema)
	assert.Equal(t, 400, req.MaxTokens)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Flight: AA100")
	assert.Contains(t, msg, "Route: JFK -> LAX")
	assert.Contains(t, msg, "Friday, March")
	assert.Contains(t, msg, "Delay probability: 73.00%")
	assert.Contains(t, msg, "Risk band: HIGH")
	assert.Contains(t, msg, "Not seen in training: Flight_AA100")
	assert.Contains(t, msg, "Language: Spanish")
}

func TestAdvise_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	svc := NewService(mock, Config{}, nil)

	_, err := svc.Advise(context.Background(), sampleInput())
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestTryAdvise_SwallowsErrors(t *testing.T) {
	svc := NewService(llm.NewMockProvider(), Config{}, nil)
	assert.Nil(t, svc.TryAdvise(context.Background(), sampleInput()))
}

func TestDisabledService(t *testing.T) {
	var svc *Service
	assert.False(t, svc.Enabled())
	assert.Nil(t, svc.TryAdvise(context.Background(), sampleInput()))
	_, ok := svc.ConsumeAdvice()
	assert.False(t, ok)

	_, err := NewService(nil, Config{}, nil).Advise(context.Background(), sampleInput())
	assert.Error(t, err)
}

func TestAdvise_NeedsResult(t *testing.T) {
	svc := NewService(llm.NewMockProvider(), Config{}, nil)
	_, err := svc.Advise(context.Background(), Input{Query: sampleInput().Query})
	assert.Error(t, err)
}

func TestRequestAndConsumeAdvice(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"Bajo riesgo.","tips":[]}`),
	})
	svc := NewService(mock, Config{Language: "English"}, nil)

	svc.RequestAdvice(context.Background(), sampleInput())

	var (
		a  *Advisory
		ok bool
	)
	require.Eventually(t, func() bool {
		a, ok = svc.ConsumeAdvice()
		return ok
	}, time.Second, 5*time.Millisecond)
	require.NotNil(t, a)
	assert.Equal(t, "Bajo riesgo.", a.Summary)

	_, ok = svc.ConsumeAdvice()
	assert.False(t, ok, "advice is consumed once")
}
