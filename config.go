package microc

import (
	"io"
	"log/slog"
)

// Config holds options for a compilation.
type Config struct {
	// Diagnostics receives syntax errors and warnings as they are
	// reported, one per line. If nil, they are only recorded in the Result.
	Diagnostics io.Writer

	// Trace receives a debug record for every production entered, every
	// semantic action and every emitted instruction. Nil disables tracing.
	Trace *slog.Logger

	// Color renders the severity labels written to Diagnostics with ANSI
	// colours.
	Color bool
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.Diagnostics == nil {
		c.Diagnostics = io.Discard
	}
}
