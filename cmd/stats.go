package cmd

import (
	"fmt"

	"github.com/rahulm/quizforge/internal/llm"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show LLM usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.LLMStats(ctx)
		if err != nil {
			return err
		}
		if stats.Calls == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}

		fmt.Printf("Calls: %d (%d failed)\n", stats.Calls, stats.Failures)
		fmt.Printf("Tokens: %d in / %d out\n", stats.InputTokens, stats.OutputTokens)
		if !stats.FirstCall.IsZero() {
			fmt.Printf("Period: %s — %s\n",
				stats.FirstCall.Local().Format("2006-01-02 15:04"),
				stats.LastCall.Local().Format("2006-01-02 15:04"))
		}

		usage, err := st.LLMUsageByModel(ctx)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("%-36s  %-6s  %-10s  %-10s  %s\n", "Model", "Calls", "In", "Out", "Est. cost")
		for _, u := range usage {
			cost := "n/a"
			if mc := llm.LookupCost(u.Model); mc != nil {
				cost = fmt.Sprintf("$%.4f", mc.Cost(u.InputTokens, u.OutputTokens))
			}
			fmt.Printf("%-36s  %-6d  %-10d  %-10d  %s\n",
				u.Model, u.Calls, u.InputTokens, u.OutputTokens, cost)
		}
		return nil
	},
}
