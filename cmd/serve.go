package cmd

import (
	"context"
		"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lalo8115/proyecto-vuelos/internal/logging"
	"github.com/lalo8115/proyecto-vuelos/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Serve exposes POST /v1/predict, GET /v1/schema, GET /v1/history,
GET /healthz and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		o := wireOpts{advisor: true}
		if cmd.Flags().Changed("mock") {
			p, _ := cmd.Flags().GetFloat64("mock")
			o.mock = &p
		}
		rt, err := wire(ctx, o)
		if err != nil {
			return err
		}
		defer rt.Close()

		if _, err := rt.requireService(); err != nil {
			return err
		}

		opts := server.Options{
			Addr:    cfg.Server.Addr,
			Service: rt.svc,
			Metrics: rt.metrics,
			History: rt.history,
			Log:     logger,
		}
		if rt.model != nil {
			opts.Health = rt.model.HealthCheck
		}
		srv := server.New(opts)

		errc := make(chan error, 1)
		go func() { errc <- srv.Serve() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", logging.Err(err))
			return err
		}
		return <-errc
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080, or set VUELOS_SERVER_ADDR)")
	serveCmd.Flags().Float64("mock", 0, "skip the model server and return this probability (0-1)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
