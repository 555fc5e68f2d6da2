package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/dietinsights/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server health, readiness and stored stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), os.Stdout, flagURL)
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(ctx context.Context, w io.Writer, url string) error {
	fmt.Fprintln(w, "\ndietinsights doctor")
	fmt.Fprintln(w, "===================")

	results := doctorChecks(ctx, url)

	fmt.Fprintln(w)
	allPassed := true
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(w, "       Hint: %s\n", r.Hint)
		}
	}

	fmt.Fprintln(w)
	if !allPassed {
		fmt.Fprintln(w, "Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(w, "All checks passed!")

	return nil
}

func doctorChecks(ctx context.Context, url string) []checkResult {
	var results []checkResult

	cfgPath, _, cfgErr := loadConfig()
	if cfgErr != nil {
		// A missing config file is fine when the URL comes from a flag or env.
		results = append(results, checkResult{
			Name: "Config file", Passed: url != defaultURL || os.Getenv("DIETINSIGHTS_URL") != "",
			Detail: fmt.Sprintf("not found (%s)", cfgPath),
			Hint:   "Run: dietctl init",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true,
			Detail: fmt.Sprintf("found (%s)", cfgPath),
		})
	}

	results = append(results, checkResult{Name: "Server URL", Passed: true, Detail: url})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c := client.New(url, client.WithRetries(0), client.WithTimeout(5*time.Second))

	health, err := c.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Passed: false, Detail: url,
			Hint: fmt.Sprintf("Is dietinsights running? Error: %v", err),
		})
	}
	results = append(results, checkResult{
		Name: "Server reachable", Passed: true,
		Detail: fmt.Sprintf("v%s, store %s", health.Version, health.StoreBackend),
	})

	if ready, err := c.Ready(ctx); err != nil {
		results = append(results, checkResult{
			Name: "Store ready", Passed: false,
			Hint: fmt.Sprintf("Check the store connection. Error: %v", err),
		})
	} else {
		results = append(results, checkResult{Name: "Store ready", Passed: true, Detail: ready.Status})
	}

	switch stats, err := c.Stats.Get(ctx); {
	case client.IsNotFound(err):
		results = append(results, checkResult{
			Name: "Stats", Passed: false, Detail: "none stored",
			Hint: "Run: dietctl ingest <file>",
		})
	case err != nil:
		results = append(results, checkResult{Name: "Stats", Passed: false, Hint: err.Error()})
	default:
		results = append(results, checkResult{
			Name: "Stats", Passed: true,
			Detail: fmt.Sprintf("%d diet groups", len(stats.Charts.MacrosByDiet)),
		})
	}

	return results
}
