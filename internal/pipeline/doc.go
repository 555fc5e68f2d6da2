// Package pipeline turns a raw diet table into canonical rows and
// chart-ready aggregates. Everything here is pure: no I/O, no clocks except
// where a caller passes one in.
package pipeline
