package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lalo8115/proyecto-vuelos/internal/llm"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect advisory models and LLM request events",
}

var llmModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model aliases and their pricing",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-12s  %-16s  %-30s  %s\n", "Provider", "Alias", "Model", "USD/MTok in/out")
		fmt.Println(strings.Repeat("─", 84))
		for _, m := range llm.KnownModels() {
			price := "?"
			if m.Cost != nil {
				price = fmt.Sprintf("%.2f / %.2f", m.Cost.InputPerMTok, m.Cost.OutputPerMTok)
			}
			fmt.Printf("%-12s  %-16s  %-30s  %s\n", m.Provider, m.Alias, m.ID, price)
		}

		if lc, ok := llm.Discover(cfg.LLMConfig()); ok {
			fmt.Printf("\nConfigured: %s (%s)\n", lc.Provider, lc.ModelOrDefault())
		} else {
			fmt.Println("\nNo provider configured; advisories are off.")
		}
	},
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 10),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		var e *store.LLMRequestEvent
		for i := range events {
			if events[i].ID == id {
				e = &events[i]
				break
			}
		}
		if e == nil {
			return fmt.Errorf("event %d: %w", id, store.ErrNotFound)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body != "" {
				fmt.Println(part.body)
			} else {
				fmt.Println("(not captured)")
			}
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}
		printLLMUsage(events)
		return nil
	},
}

type modelUsage struct {
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// printLLMUsage aggregates events per model and prices them.
func printLLMUsage(events []store.LLMRequestEvent) {
	byModel := make(map[string]*modelUsage)
	for _, e := range events {
		u, ok := byModel[e.Model]
		if !ok {
			u = &modelUsage{Model: e.Model}
			byModel[e.Model] = u
		}
		u.Calls++
		if !e.Success {
			u.Failures++
		}
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
	}
	usage := make([]*modelUsage, 0, len(byModel))
	for _, u := range byModel {
		usage = append(usage, u)
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].Model < usage[j].Model })

	fmt.Println("Advisory Cost (USD, estimated)")
	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("%-32s  %6s  %6s  %10s  %10s  %9s\n",
		"Model", "Calls", "Failed", "Input", "Output", "Cost")
	fmt.Println(strings.Repeat("─", 80))

	var totalCost float64
	var unknown []string
	for _, u := range usage {
		cost := llm.LookupCost(u.Model)
		if cost == nil {
			unknown = append(unknown, u.Model)
			fmt.Printf("%-32s  %6d  %6d  %10d  %10d  %9s\n",
				truncate(u.Model, 32), u.Calls, u.Failures, u.InputTokens, u.OutputTokens, "?")
			continue
		}
		c := cost.Cost(u.InputTokens, u.OutputTokens)
		totalCost += c
		fmt.Printf("%-32s  %6d  %6d  %10d  %10d  %9s\n",
			truncate(u.Model, 32), u.Calls, u.Failures, u.InputTokens, u.OutputTokens, formatCost(c))
	}

	fmt.Println(strings.Repeat("─", 80))
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf("%-32s  %6s  %6s  %10s  %10s  %9s\n", label, "", "", "", "", formatCost(totalCost))
	if len(unknown) > 0 {
		fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. advisory)")

	llmCmd.AddCommand(llmModelsCmd)
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
