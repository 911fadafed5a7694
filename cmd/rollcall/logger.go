package main

import (
	"io"
	"log/slog"

	"rollcall/internal/config"
	"rollcall/internal/logging"
)

// newLogger builds the run logger. Quiet limits output to errors; verbose
// enables debug detail. Colour follows the terminal and NO_COLOR.
func newLogger(cfg *config.Config, out io.Writer, quiet, verbose bool) (*slog.Logger, error) {
	level := cfg.Logging.Level
	switch {
	case quiet:
		level = "error"
	case verbose:
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Color:  logging.ColorEnabled(out),
		Output: out,
	})
}
