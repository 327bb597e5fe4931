// Package predictor provides implementations of the delay classifier the
// pipeline calls, plus retry, logging and metrics decorators.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
)

const defaultModelName = "delay"

// HTTPConfig points at a TensorFlow Serving compatible REST endpoint.
type HTTPConfig struct {
	// URL is the server base, e.g. http://localhost:8501.
	URL string
	// Model is the served model name. Default: "delay".
	Model string
	// Timeout bounds a single request. Default: 10s.
	Timeout time.Duration
}

// HTTP calls a model server speaking the TF Serving predict protocol:
//
//	POST {url}/v1/models/{model}:predict  {"instances": [[...]]}
//	-> {"predictions": [[p]]}
type HTTP struct {
	client    *http.Client
	predict   string
	statusURL string
	model     string
}

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
	Error       string            `json:"error,omitempty"`
}

// NewHTTP builds a client for cfg.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.URL == "" {
		return nil, errors.New("predictor URL is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModelName
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	base := strings.TrimRight(cfg.URL, "/")
	return &HTTP{
		client:    &http.Client{Timeout: timeout},
		predict:   fmt.Sprintf("%s/v1/models/%s:predict", base, model),
		statusURL: fmt.Sprintf("%s/v1/models/%s", base, model),
		model:     model,
	}, nil
}

// Model returns the served model name.
func (h *HTTP) Model() string {
	return h.model
}

// Predict sends one instance and returns the first output as a fraction.
func (h *HTTP) Predict(ctx context.Context, v features.Vector) (float64, error) {
	body, err := json.Marshal(predictRequest{Instances: [][]float64{v}})
	if err != nil {
		return 0, fmt.Errorf("marshal instances: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.predict, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, &ErrUnavailable{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if err := statusError(resp, raw); err != nil {
		return 0, err
	}
	return parsePrediction(raw)
}

// HealthCheck asks the server for the model status.
func (h *HTTP) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.statusURL, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ErrUnavailable{StatusCode: resp.StatusCode, Err: fmt.Errorf("model %q not ready", h.model)}
	}
	return nil
}

func statusError(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ErrRateLimit{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        errors.New(snippet(body)),
		}
	case resp.StatusCode >= 500:
		return &ErrUnavailable{StatusCode: resp.StatusCode, Err: errors.New(snippet(body))}
	default:
		return &ErrBadResponse{StatusCode: resp.StatusCode, Body: string(body), Err: errors.New(snippet(body))}
	}
}

// parsePrediction accepts {"predictions": [[p]]} and {"predictions": [p]}.
func parsePrediction(raw []byte) (float64, error) {
	var pr predictResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return 0, &ErrBadResponse{Body: string(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	if pr.Error != "" {
		return 0, &ErrBadResponse{Body: string(raw), Err: errors.New(pr.Error)}
	}
	if len(pr.Predictions) == 0 {
		return 0, &ErrBadResponse{Body: string(raw), Err: errors.New("empty predictions")}
	}

	first := pr.Predictions[0]
	var scalar float64
	if err := json.Unmarshal(first, &scalar); err == nil {
		return scalar, nil
	}
	var row []float64
	if err := json.Unmarshal(first, &row); err != nil || len(row) == 0 {
		return 0, &ErrBadResponse{Body: string(raw), Err: fmt.Errorf("prediction is not a number: %s", first)}
	}
	return row[0], nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty body"
	}
	return s
}
