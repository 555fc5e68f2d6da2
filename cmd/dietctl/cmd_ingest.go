package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/persistorai/dietinsights/client"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Upload a dataset (csv or xlsx) and run the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer f.Close()

			report, err := apiClient.Ingest.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				if client.IsSchemaError(err) {
					return fmt.Errorf("dataset rejected: %w", err)
				}
				return fmt.Errorf("ingest: %w", err)
			}
			return output(report, func(w io.Writer) { printIngestTable(w, report) })
		},
	}
}

func printIngestTable(w io.Writer, r *client.IngestReport) {
	formatTable(w, []string{"INGEST", "SOURCE", "ROWS", "RECIPES", "WARNINGS"}, [][]string{{
		r.IngestID, r.Source, strconv.Itoa(r.Rows), strconv.Itoa(r.RecipesWritten), strconv.Itoa(r.Warnings.Total),
	}})

	if len(r.Warnings.ByField) == 0 {
		return
	}
	fields := make([]string, 0, len(r.Warnings.ByField))
	for f := range r.Warnings.ByField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	fmt.Fprintln(w)
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f, strconv.Itoa(r.Warnings.ByField[f])})
	}
	formatTable(w, []string{"FIELD", "COERCED"}, rows)
}
