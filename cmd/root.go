package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lalo8115/proyecto-vuelos/internal/config"
	"github.com/lalo8115/proyecto-vuelos/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "vuelos",
	Short: "Flight delay risk predictor",
	Long: `Vuelos estimates the probability that a flight departs late from its
flight code, route and scheduled departure, using a trained classifier
served over HTTP. Run without arguments for the interactive form.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vuelos.yaml)")
	pf.String("schema", "", "model schema URI: path, http(s)://, s3:// or gs:// (or set VUELOS_SCHEMA)")
	pf.String("db", "", `history database path, "off" to disable (or set VUELOS_DB)`)
	pf.String("predictor-url", "", "model server base URL (or set VUELOS_PREDICTOR_URL)")
	pf.String("timezone", "", "IANA zone departure times are read in (default: local)")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")

	for key, flag := range map[string]string{
		"schema":        "schema",
		"db":            "db",
		"predictor.url": "predictor-url",
		"timezone":      "timezone",
		"log.level":     "log-level",
		"log.format":    "log-format",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig resolves .env, the config file, env vars and flags into cfg
// and builds the process logger.
func initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}
	if err := config.Init(viper.GetViper(), cfgFile); err != nil {
		return err
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = c

	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = log
	slog.SetDefault(logger)

	if f := viper.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", slog.String("path", f))
	}
	return nil
}

// warnf prints a non-fatal warning to stderr.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
