package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lalo8115/proyecto-vuelos/internal/advisor"
	"github.com/lalo8115/proyecto-vuelos/internal/app"
	"github.com/lalo8115/proyecto-vuelos/internal/llm"
	"github.com/lalo8115/proyecto-vuelos/internal/logging"
	"github.com/lalo8115/proyecto-vuelos/internal/metrics"
	"github.com/lalo8115/proyecto-vuelos/internal/predictor"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
	"github.com/lalo8115/proyecto-vuelos/internal/service"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

// deps holds everything a command may need. Any field can be nil when
// the configuration leaves that part out.
type deps struct {
	store   *store.Store
	history store.PredictionRepo
	events  store.EventRepo
	metrics *metrics.Metrics
	model   *predictor.HTTP
	svc     *service.Service
}

type wireOpts struct {
	// mock replaces the model server with a constant probability.
	mock    *float64
	advisor bool
}

// wire opens the store, loads the schema, and builds the predictor chain
// and the prediction service.
func wire(ctx context.Context, o wireOpts) (*deps, error) {
	rt := &deps{metrics: metrics.New()}

	if cfg.HistoryEnabled() {
		dbPath, err := resolveDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		rt.store = st
		rt.history = st.PredictionRepo()
		rt.events = st.EventRepo()
	}

	if cfg.Schema == "" {
		logger.Warn("no schema configured; set --schema or VUELOS_SCHEMA")
		return rt, nil
	}
	sc, err := cfg.SchemaLoader().Load(ctx, cfg.Schema)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load schema: %w", err)
	}
	logger.Debug("schema loaded",
		slog.String("uri", cfg.Schema),
		slog.Int("columns", sc.Len()),
		slog.String("version", sc.Version()))

	base, err := rt.basePredictor(o)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rc := predictor.DefaultRetryConfig()
	rc.MaxAttempts = cfg.Predictor.Retries + 1
	// caller → retry → logging → metrics → base
	p := predictor.WithRetry(
		predictor.WithLogging(predictor.WithMetrics(base, rt.metrics), logger),
		rc)

	loc, err := cfg.Location()
	if err != nil {
		rt.Close()
		return nil, err
	}

	var adv *advisor.Service
	if o.advisor {
		adv = rt.advisor(ctx)
	}

	rt.svc, err = service.New(service.Options{
		Schema:    sc,
		Predictor: p,
		Location:  loc,
		Metrics:   rt.metrics,
		History:   rt.history,
		Advisor:   adv,
		Log:       logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *deps) basePredictor(o wireOpts) (predictor.Predictor, error) {
	if o.mock != nil {
		logger.Warn("using a constant predictor", slog.Float64("probability", *o.mock))
		return predictor.Constant(*o.mock), nil
	}
	h, err := predictor.NewHTTP(predictor.HTTPConfig{
		URL:     cfg.Predictor.URL,
		Model:   cfg.Predictor.Model,
		Timeout: cfg.Predictor.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("predictor: %w", err)
	}
	rt.model = h
	return h, nil
}

// advisor returns nil when no LLM is configured or it fails to start;
// predictions work without it.
func (rt *deps) advisor(ctx context.Context) *advisor.Service {
	lc, ok := llm.Discover(cfg.LLMConfig())
	if !ok {
		return nil
	}
	provider, err := llm.NewProvider(ctx, lc, rt.events, logger)
	if err != nil {
		logger.Warn("advisory unavailable", logging.Err(err))
		return nil
	}
	return advisor.NewService(provider, advisor.Config{
		Language: cfg.LLM.Language,
		Timeout:  cfg.LLM.Timeout,
	}, logger)
}

// requireService fails with a friendly message when no schema is loaded.
func (rt *deps) requireService() (*service.Service, error) {
	if rt.svc == nil {
		return nil, fmt.Errorf("%w: configure the schema with --schema or VUELOS_SCHEMA", service.ErrModelNotLoaded)
	}
	return rt.svc, nil
}

func (rt *deps) Close() {
	if rt.store != nil {
		rt.store.Close()
	}
}

// openStore opens the history database for the read-only commands.
func openStore() (*store.Store, error) {
	if !cfg.HistoryEnabled() {
		return nil, errors.New("history is disabled (db is \"off\")")
	}
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// resolveDBPath returns cfg.DB (from --db or VUELOS_DB) or the default
// XDG path.
func resolveDBPath() (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// loadSchema fetches and validates one schema document.
func loadSchema(ctx context.Context, uri string) (*schema.Schema, error) {
	return cfg.SchemaLoader().Load(ctx, uri)
}

// runApp launches the interactive form.
func runApp(cmd *cobra.Command) error {
	// The terminal belongs to the TUI; logs would corrupt it.
	logger = logging.Discard()

	rt, err := wire(cmd.Context(), wireOpts{advisor: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	return app.Run(app.Options{Service: rt.svc, History: rt.history})
}
