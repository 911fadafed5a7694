// Package sampling decides which tail of a media file is scanned for end
// credits and how densely frames are taken from it.
package sampling

import "strings"

const (
	DefaultLongTail      = 210.0
	DefaultShortTail     = 90.0
	DefaultLongThreshold = 3600.0
	DefaultFPS           = "1/3"
)

// Policy holds the tail sizes in seconds. Zero fields fall back to the
// package defaults.
type Policy struct {
	LongTail      float64
	ShortTail     float64
	LongThreshold float64
	FPS           string
}

// Window is the sampling range derived for one file.
type Window struct {
	Start float64
	FPS   string
}

// StartTime returns the timestamp at which sampling begins. Works longer
// than the threshold get the long tail.
func (p Policy) StartTime(duration float64) float64 {
	tail := p.shortTail()
	if duration > p.longThreshold() {
		tail = p.longTail()
	}
	start := duration - tail
	if start < 0 {
		return 0
	}
	return start
}

// Window returns the start time and the unmodified fps expression.
func (p Policy) Window(duration float64) Window {
	return Window{Start: p.StartTime(duration), FPS: p.fps()}
}

func (p Policy) longTail() float64 {
	if p.LongTail > 0 {
		return p.LongTail
	}
	return DefaultLongTail
}

func (p Policy) shortTail() float64 {
	if p.ShortTail > 0 {
		return p.ShortTail
	}
	return DefaultShortTail
}

func (p Policy) longThreshold() float64 {
	if p.LongThreshold > 0 {
		return p.LongThreshold
	}
	return DefaultLongThreshold
}

func (p Policy) fps() string {
	if strings.TrimSpace(p.FPS) == "" {
		return DefaultFPS
	}
	return p.FPS
}
