package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// QueryOpts configures history queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // created_at >= From
	To     time.Time // created_at <= To
	Band   string    // exact band match, empty = any
}

// Prediction is one stored query and its outcome. Failed predictions are
// kept too, with Error set and Band empty.
type Prediction struct {
	ID        string
	Sequence  int64
	CreatedAt time.Time
	Source    string // cli, tui or http

	Flight      string
	Origin      string
	Destination string
	Date        string
	Time        string

	Month   int
	Weekday int
	Hour    int

	Probability float64
	Band        string
	Unmatched   []string
	Advisory    string
	Error       string
}

// PredictionRepo stores the prediction history.
type PredictionRepo interface {
	// Append stores p, assigning ID, Sequence and CreatedAt when unset.
	Append(ctx context.Context, p *Prediction) error

	// Get returns the prediction with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Prediction, error)

	// List returns predictions newest first.
	List(ctx context.Context, opts QueryOpts) ([]Prediction, error)

	// CountByBand returns how many successful predictions fell in each band.
	CountByBand(ctx context.Context) (map[string]int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	CreatedAt time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
}
