package workflow

import (
	"context"

	"rollcall/internal/media/ffprobe"
	"rollcall/internal/media/frames"
	"rollcall/internal/sampling"
)

// FFprobe probes durations with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Duration returns the media duration in seconds and whether one was found.
func (p FFprobe) Duration(ctx context.Context, path string) (float64, bool, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, false, err
	}
	seconds, ok := result.DurationSeconds()
	return seconds, ok, nil
}

// FFmpeg extracts frames with the ffmpeg binary.
type FFmpeg struct {
	Binary string
}

// Extract writes the frames of window into dir and returns their paths in
// order.
func (f FFmpeg) Extract(ctx context.Context, input string, window sampling.Window, dir string) ([]string, error) {
	return frames.Extract(ctx, frames.Request{
		Binary:    f.Binary,
		Input:     input,
		Start:     window.Start,
		FPS:       window.FPS,
		OutputDir: dir,
	})
}
