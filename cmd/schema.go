package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lalo8115/proyecto-vuelos/internal/features"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
	"github.com/lalo8115/proyecto-vuelos/internal/predictor"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect and validate model schema documents",
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check [uri]",
	Short: "Validate a schema and dry-run an encoding against it",
	Long: `Check loads the schema (default: the configured one), validates it, and
encodes a sample query to make sure the numeric columns and scaler agree
with what the encoder writes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, err := schemaURI(args)
		if err != nil {
			return err
		}
		sc, err := loadSchema(cmd.Context(), uri)
		if err != nil {
			return err
		}

		sample := pipeline.Query{
			FlightCode:      "CHECK",
			OriginCode:      "AAA",
			DestinationCode: "BBB",
			DepartureDate:   "2024-01-01",
			DepartureTime:   "12:00",
		}
		if _, err := pipeline.Run(cmd.Context(), sample, sc, predictor.Constant(0)); err != nil {
			return fmt.Errorf("schema %s does not fit the encoder: %w", uri, err)
		}

		fmt.Printf("OK  %s: %d columns, %d scaled features", uri, sc.Len(), len(sc.Scaler().Features))
		if v := sc.Version(); v != "" {
			fmt.Printf(", version %s", v)
		}
		fmt.Println()
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show [uri]",
	Short: "Print a schema's scaler and one-hot vocabulary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, err := schemaURI(args)
		if err != nil {
			return err
		}
		sc, err := loadSchema(cmd.Context(), uri)
		if err != nil {
			return err
		}
		all, _ := cmd.Flags().GetBool("all")
		printSchema(sc, all)
		return nil
	},
}

func schemaURI(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Schema == "" {
		return "", fmt.Errorf("no schema given; pass a URI or set VUELOS_SCHEMA")
	}
	return cfg.Schema, nil
}

func printSchema(sc *schema.Schema, all bool) {
	if v := sc.Version(); v != "" {
		fmt.Printf("Version:  %s\n", v)
	}
	fmt.Printf("Columns:  %d\n\n", sc.Len())

	scaler := sc.Scaler()
	fmt.Println("Scaler")
	fmt.Println(strings.Repeat("─", 44))
	fmt.Printf("%-20s  %10s  %10s\n", "Feature", "Mean", "Scale")
	for i, f := range scaler.Features {
		fmt.Printf("%-20s  %10.4f  %10.4f\n", f, scaler.Mean[i], scaler.Scale[i])
	}

	l := features.DefaultLayout
	groups := []struct {
		name, prefix string
	}{
		{"Flights", l.FlightPrefix},
		{"Origins", l.OriginPrefix},
		{"Destinations", l.DestinationPrefix},
	}
	for _, g := range groups {
		var codes []string
		for _, c := range sc.Columns() {
			if code, ok := strings.CutPrefix(c, g.prefix); ok {
				codes = append(codes, code)
			}
		}
		fmt.Printf("\n%s (%d)\n", g.name, len(codes))
		if len(codes) > 20 && !all {
			fmt.Printf("  %s ... (--all to list every code)\n", strings.Join(codes[:20], " "))
			continue
		}
		if len(codes) > 0 {
			fmt.Printf("  %s\n", strings.Join(codes, " "))
		}
	}
}

func init() {
	schemaShowCmd.Flags().Bool("all", false, "list every one-hot code")

	schemaCmd.AddCommand(schemaCheckCmd)
	schemaCmd.AddCommand(schemaShowCmd)
}
