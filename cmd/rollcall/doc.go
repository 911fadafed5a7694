// Package main hosts the RollCall CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once per invocation, applies
// command-line overrides, and hands off to internal/workflow for the actual
// directory run. Inspection commands (history, doctor, staging, config)
// read the same configuration so they always agree with what a run would
// use.
package main
