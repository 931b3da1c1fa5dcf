// Package telemetry wires the structured logging every other package in
// imdbdataset logs through. It is a thin wrapper around zerolog: callers get
// a plain zerolog.Logger value (the idiom the rest of the module follows),
// plus a couple of field-naming helpers so every package spells the same
// attribute the same way (table, file).
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger writing structured JSON lines to w. Pass os.Stderr
// for production use or any io.Writer in tests; a nil w defaults to
// os.Stderr. Level selection (what gets printed) is the caller's concern,
// not this package's — it is an external collaborator per SPEC_FULL.md §1.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything, for tests and callers that
// do not care about progress/warning output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithTable returns a child logger scoped to a single staging or report
// table, the attribute nearly every log line in this module carries.
func WithTable(logger zerolog.Logger, table string) zerolog.Logger {
	return logger.With().Str("table", table).Logger()
}

// WithFile scopes a logger further to the dataset file currently being
// ingested.
func WithFile(logger zerolog.Logger, file string) zerolog.Logger {
	return logger.With().Str("file", file).Logger()
}
