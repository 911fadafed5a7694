// Package logging assembles structured slog loggers and formatting helpers used
// across RollCall.
//
// It owns the console and JSON handlers, maps level names, and exposes
// context-aware helpers so per-file code tags log lines with the run id, the
// media file, and the current stage. Console output switches to a tinted
// handler when writing to a terminal. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging
