// Package server exposes predictions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/logging"
	"github.com/lalo8115/proyecto-vuelos/internal/metrics"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/service"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

// maxBodyBytes bounds the predict request body.
const maxBodyBytes = 16 << 10

// Options configures the HTTP server.
type Options struct {
	Addr string

	Service *service.Service
	Metrics *metrics.Metrics
	History store.PredictionRepo

	// Health probes the model server; nil means always healthy.
	Health func(ctx context.Context) error

	Log *slog.Logger
}

// Server serves the prediction API.
type Server struct {
	opts   Options
	log    *slog.Logger
	server *http.Server
}

// New builds a Server. It does not start listening.
func New(o Options) *Server {
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	s := &Server{opts: o, log: o.Log}

	s.server = &http.Server{
		Addr:              o.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with CORS and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/predict", s.handlePredict)
	mux.HandleFunc("GET /v1/schema", s.handleSchema)
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics.Handler())
	}
	return s.instrument(cors(mux))
}

// Serve listens until Shutdown is called. It returns nil on a clean
// shutdown.
func (s *Server) Serve() error {
	s.log.Info("listening", slog.String("addr", s.opts.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type predictRequest struct {
	pipeline.Query
	Explain bool `json:"explain,omitempty"`
}

type temporalJSON struct {
	Month   int `json:"month"`
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
}

type predictResponse struct {
	ID          string       `json:"id,omitempty"`
	Probability float64      `json:"probability"`
	Percent     float64      `json:"percent"`
	Band        string       `json:"band"`
	Label       string       `json:"label"`
	Message     string       `json:"message"`
	Temporal    temporalJSON `json:"temporal"`
	Unmatched   []string     `json:"unmatched"`
	Advisory    any          `json:"advisory,omitempty"`
}

type apiError struct {
	Message string   `json:"message"`
	Kind    string   `json:"kind,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.opts.Service == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Message: service.ErrModelNotLoaded.Error(), Kind: "not_loaded"})
		return
	}

	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Message: "invalid JSON body: " + err.Error(), Kind: "bad_request"})
		return
	}

	out, err := s.opts.Service.Predict(r.Context(), service.Request{
		Query:   req.Query,
		Source:  "http",
		Explain: req.Explain,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res := out.Result
	unmatched := res.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}
	resp := predictResponse{
		ID:          out.ID,
		Probability: res.Probability,
		Percent:     res.Percent(),
		Band:        string(res.Band),
		Label:       res.Band.Label(),
		Message:     res.Band.Message(res.Percent()),
		Temporal:    temporalJSON(res.Temporal),
		Unmatched:   unmatched,
	}
	if out.Advisory != nil {
		resp.Advisory = out.Advisory
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.ErrorKind(err)
	body := apiError{Message: err.Error(), Kind: kind}

	status := http.StatusInternalServerError
	switch kind {
	case "missing_fields":
		var missing *service.MissingFieldsError
		if errors.As(err, &missing) {
			body.Missing = missing.Fields
		}
		status = http.StatusBadRequest
	case "invalid_input":
		status = http.StatusBadRequest
	case "config_mismatch":
		status = http.StatusUnprocessableEntity
	case "timeout":
		status = http.StatusGatewayTimeout
	case "predictor":
		status = http.StatusBadGateway
	case "not_loaded":
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		s.log.ErrorContext(r.Context(), "predict request failed", slog.String("kind", kind), logging.Err(err))
	}
	writeJSON(w, status, body)
}

type schemaResponse struct {
	Version        string   `json:"version,omitempty"`
	Columns        int      `json:"columns"`
	ScalerFeatures []string `json:"scaler_features"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if s.opts.Service == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Message: service.ErrModelNotLoaded.Error(), Kind: "not_loaded"})
		return
	}
	sc := s.opts.Service.Schema()
	writeJSON(w, http.StatusOK, schemaResponse{
		Version:        sc.Version(),
		Columns:        sc.Len(),
		ScalerFeatures: sc.Scaler().Features,
	})
}

type historyItem struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Flight      string    `json:"flight"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Probability float64   `json:"probability"`
	Band        string    `json:"band,omitempty"`
	Error       string    `json:"error,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeJSON(w, http.StatusNotFound, apiError{Message: "history is disabled"})
		return
	}

	opts := store.QueryOpts{Limit: 50}
	if v := r.URL.Query().Get("band"); v != "" {
		b, err := risk.ParseBand(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Message: err.Error()})
			return
		}
		opts.Band = string(b)
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 500 {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "limit must be between 1 and 500"})
			return
		}
		opts.Limit = n
	}

	list, err := s.opts.History.List(r.Context(), opts)
	if err != nil {
		s.log.ErrorContext(r.Context(), "history query failed", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Message: "history unavailable"})
		return
	}

	items := make([]historyItem, 0, len(list))
	for _, p := range list {
		items = append(items, historyItem{
			ID: p.ID, CreatedAt: p.CreatedAt,
			Flight: p.Flight, Origin: p.Origin, Destination: p.Destination,
			Date: p.Date, Time: p.Time,
			Probability: p.Probability, Band: p.Band, Error: p.Error,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Service == nil {
		http.Error(w, service.ErrModelNotLoaded.Error(), http.StatusServiceUnavailable)
		return
	}
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			http.Error(w, "predictor: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
