// Package workflow runs identification over every media file in a
// directory.
//
// A Runner takes the per-directory lock, sweeps stale staging areas left by
// crashed runs, and then walks the scanned files one at a time through the
// probe, extract, identify, and rename stages. Each file ends as an Outcome
// with one of the statuses renamed, planned, unresolved, skipped, or
// failed; per-file failures are logged and recorded but never abort the
// run. Only lock contention, an unreadable directory, or cancellation of
// the run context end a run early.
//
// NewRunner wires the production collaborators (ffprobe, ffmpeg, the vision
// service, the organizer, and the history store) from a loaded config.
// Tests substitute the small interfaces declared in runner.go.
package workflow
