package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/persistorai/dietinsights/client"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the stored diet statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Stats.Get(cmd.Context())
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("no stats yet, run: dietctl ingest <file>")
				}
				return fmt.Errorf("stats: %w", err)
			}
			return output(resp, func(w io.Writer) { printStatsTable(w, resp) })
		},
	}
}

func newComputeCmd() *cobra.Command {
	var opts client.ComputeOptions
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute statistics on demand from the current dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.MinProtein < 0 {
				return fmt.Errorf("--min-protein must be >= 0")
			}
			resp, err := apiClient.Stats.Compute(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("compute: %w", err)
			}
			return output(resp, func(w io.Writer) { printStatsTable(w, resp) })
		},
	}
	cmd.Flags().Float64Var(&opts.MinProtein, "min-protein", 0, "Only include recipes with at least this much protein (g)")
	cmd.Flags().BoolVar(&opts.Persist, "persist", false, "Store the result as the current stats")
	return cmd
}

func printStatsTable(w io.Writer, resp *client.StatsResponse) {
	calories := make(map[string]float64, len(resp.Charts.CaloriesByDiet))
	for _, c := range resp.Charts.CaloriesByDiet {
		calories[c.DietType] = c.Calories
	}

	rows := make([][]string, 0, len(resp.Charts.MacrosByDiet))
	for _, m := range resp.Charts.MacrosByDiet {
		rows = append(rows, []string{m.DietType, grams(m.ProteinG), grams(m.CarbsG), grams(m.FatG), grams(calories[m.DietType])})
	}
	formatTable(w, []string{"DIET", "PROTEIN", "CARBS", "FAT", "CALORIES"}, rows)
	fmt.Fprintf(w, "\nrecords: %v\n", resp.Meta.Records)
}
