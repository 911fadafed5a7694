// Package frames extracts still frames from the tail of a media file with
// ffmpeg and lists them in playback order.
package frames
