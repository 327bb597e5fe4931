package predictor

import (
	"context"
	"sync"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
)

// Predictor maps an encoded feature vector to a delay probability in [0, 1].
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)
}

// Func adapts a plain function to Predictor.
type Func func(ctx context.Context, v features.Vector) (float64, error)

func (f Func) Predict(ctx context.Context, v features.Vector) (float64, error) {
	return f(ctx, v)
}

// MockResponse is a canned answer for the Mock predictor.
type MockResponse struct {
	Probability float64
	Err         error
}

// Mock is a deterministic Predictor for testing.
// It returns canned responses in FIFO order and records every vector.
type Mock struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []features.Vector
}

// NewMock creates a Mock with the given canned responses.
func NewMock(responses ...MockResponse) *Mock {
	return &Mock{responses: responses}
}

// Predict returns the next canned response or ErrUnavailable if the queue
// is empty.
func (m *Mock) Predict(_ context.Context, v features.Vector) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, append(features.Vector(nil), v...))

	if len(m.responses) == 0 {
		return 0, &ErrUnavailable{Err: errNoResponses}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp.Probability, resp.Err
}

// CallCount returns the number of Predict calls made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Constant always answers p. Used by `vuelos predict --mock`.
func Constant(p float64) Predictor {
	return Func(func(context.Context, features.Vector) (float64, error) {
		return p, nil
	})
}
