// Package migrations embeds the PostgreSQL schema for dietinsights.
package migrations

import "embed"

// FS contains the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
