package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/persistorai/dietinsights/client"
)

func newSearchCmd() *cobra.Command {
	var opts client.SearchOptions
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search persisted recipes by name and diet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Page < 1 || opts.Limit < 1 {
				return fmt.Errorf("--page and --limit must be >= 1")
			}
			var query string
			if len(args) == 1 {
				query = args[0]
			}

			recipes, err := apiClient.Recipes.Search(cmd.Context(), query, &opts)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			return output(recipes, func(w io.Writer) { printRecipeTable(w, recipes) })
		},
	}
	cmd.Flags().StringVar(&opts.Diet, "diet", "", "Filter by diet type")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Results per page")
	return cmd
}

func printRecipeTable(w io.Writer, recipes []client.RecipeRecord) {
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{r.RecipeName, r.DietType, r.CuisineType, grams(r.ProteinG), grams(r.Calories)})
	}
	formatTable(w, []string{"RECIPE", "DIET", "CUISINE", "PROTEIN", "CALORIES"}, rows)
}
