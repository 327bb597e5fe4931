package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lalo8115/proyecto-vuelos/internal/risk"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
	"github.com/lalo8115/proyecto-vuelos/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past predictions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		bandFlag, _ := cmd.Flags().GetString("band")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit}
		if bandFlag != "" {
			b, err := risk.ParseBand(bandFlag)
			if err != nil {
				return err
			}
			opts.Band = string(b)
		}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.PredictionRepo().List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No predictions found.")
			return nil
		}

		fmt.Printf("%-8s  %-16s  %-4s  %-8s  %-9s  %-16s  %s\n",
			"ID", "Timestamp", "Via", "Flight", "Route", "Departure", "Result")
		fmt.Println(strings.Repeat("─", 90))
		for _, p := range list {
			result := theme.ErrorText.Render("failed")
			if p.Error == "" {
				result = theme.BandStyle(risk.Band(p.Band)).Render(fmt.Sprintf("%-6s %6.2f%%", p.Band, p.Probability*100))
			}
			fmt.Printf("%-8s  %-16s  %-4s  %-8s  %-9s  %-16s  %s\n",
				p.ID[:8],
				p.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(p.Source, 4),
				truncate(p.Flight, 8),
				p.Origin+"-"+p.Destination,
				p.Date+" "+p.Time,
				result,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one prediction in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.PredictionRepo()
		p, err := repo.Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			p, err = findByPrefix(cmd, repo, args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", p.ID)
		fmt.Printf("Time:      %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Source:    %s\n", p.Source)
		fmt.Printf("Flight:    %s\n", p.Flight)
		fmt.Printf("Route:     %s -> %s\n", p.Origin, p.Destination)
		fmt.Printf("Departure: %s %s\n", p.Date, p.Time)
		if p.Error != "" {
			fmt.Printf("Error:     %s\n", p.Error)
			return nil
		}
		band := risk.Band(p.Band)
		fmt.Printf("Features:  month=%d weekday=%d hour=%d\n", p.Month, p.Weekday, p.Hour)
		fmt.Printf("Result:    %s\n", theme.BandStyle(band).Render(band.Message(p.Probability*100)))
		if len(p.Unmatched) > 0 {
			fmt.Printf("Unseen:    %s\n", strings.Join(p.Unmatched, ", "))
		}
		if p.Advisory != "" {
			fmt.Println()
			fmt.Println(p.Advisory)
		}
		return nil
	},
}

// findByPrefix resolves the short IDs printed by "history list".
func findByPrefix(cmd *cobra.Command, repo store.PredictionRepo, prefix string) (*store.Prediction, error) {
	list, err := repo.List(cmd.Context(), store.QueryOpts{})
	if err != nil {
		return nil, err
	}
	var match *store.Prediction
	for i := range list {
		if strings.HasPrefix(list[i].ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = &list[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("prediction %s: %w", prefix, store.ErrNotFound)
	}
	return match, nil
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise predictions by risk band and advisory spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		counts, err := s.PredictionRepo().CountByBand(ctx)
		if err != nil {
			return fmt.Errorf("count predictions: %w", err)
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		if total == 0 {
			fmt.Println("No predictions recorded yet.")
			return nil
		}

		fmt.Println("Predictions by Band")
		fmt.Println(strings.Repeat("─", 36))
		for _, b := range []risk.Band{risk.High, risk.Medium, risk.Low} {
			n := counts[string(b)]
			fmt.Printf("%s  %6d  %5.1f%%\n",
				theme.BandStyle(b).Render(fmt.Sprintf("%-8s", b.Label())), n, float64(n)/float64(total)*100)
		}
		fmt.Println(strings.Repeat("─", 36))
		fmt.Printf("%-8s  %6d\n", "TOTAL", total)

		events, err := s.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query advisory usage: %w", err)
		}
		if len(events) > 0 {
			fmt.Println()
			printLLMUsage(events)
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "number of predictions to show")
	historyListCmd.Flags().String("band", "", "only show LOW, MEDIUM or HIGH")
	historyListCmd.Flags().Duration("since", 0, "only show predictions newer than this, e.g. 24h")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
