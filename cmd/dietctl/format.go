package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

func formatJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

func grams(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// output prints v as JSON, or calls table when --format=table.
func output(v any, table func(io.Writer)) error {
	switch flagFmt {
	case "table":
		if table == nil {
			return formatJSON(v)
		}
		table(os.Stdout)
		return nil
	case "json", "":
		return formatJSON(v)
	default:
		return fmt.Errorf("unknown format %q (want json or table)", flagFmt)
	}
}
