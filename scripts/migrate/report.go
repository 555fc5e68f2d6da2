package main

import (
	"fmt"
	"io"
	"time"
)

// report holds the final migration summary.
type report struct {
	Source          string
	Target          string
	StatsRead       int
	StatsWritten    int
	RecipesRead     int
	RecipesWritten  int
	RecipesVerified int
	Duration        time.Duration
	DryRun          bool
	Err             error
}

// printReport outputs the final migration summary.
func printReport(w io.Writer, r *report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== dietinsights migration report ===")
	if r.DryRun {
		fmt.Fprintln(w, "MODE: DRY RUN (no changes made)")
	}
	fmt.Fprintf(w, "Source: %s\n", r.Source)
	fmt.Fprintf(w, "Target: %s\n", r.Target)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats:   %d read -> %d written\n", r.StatsRead, r.StatsWritten)
	fmt.Fprintf(w, "Recipes: %d read -> %d written -> %d verified %s\n",
		r.RecipesRead, r.RecipesWritten, r.RecipesVerified, status(r))

	fmt.Fprintf(w, "\nDuration: %.1fs\n", r.Duration.Seconds())
	if r.Err != nil {
		fmt.Fprintf(w, "Status: FAILED: %v\n", r.Err)
	} else {
		fmt.Fprintln(w, "Status: SUCCESS")
	}
}

// status compares recipe counts. Dry runs never verify.
func status(r *report) string {
	switch {
	case r.DryRun:
		return "(skipped)"
	case r.RecipesRead == r.RecipesWritten && r.RecipesWritten == r.RecipesVerified:
		return "OK"
	default:
		return "MISMATCH"
	}
}
