// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result; DurationSeconds resolves the
// media duration from the container, falling back to a duration tag on the
// video stream (as written by mkvmerge and similar muxers).
package ffprobe
