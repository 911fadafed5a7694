package workflow

import (
	"time"

	"rollcall/internal/history"
	"rollcall/internal/services"
)

// Status is the terminal state of one media file.
type Status string

const (
	StatusRenamed    Status = "renamed"
	StatusPlanned    Status = "planned"
	StatusUnresolved Status = "unresolved"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Outcome is the per-file result of a run.
type Outcome struct {
	Path    string
	Status  Status
	Title   string
	NewPath string
	// Duration is the probed video length in seconds.
	Duration    float64
	Start       float64
	Frames      int
	Filtered    int
	OCRCalls    int
	RefineCalls int
	Fallback    bool
	Err         error
	Elapsed     time.Duration
}

// Reason returns the failure text, or "" for successful outcomes.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Kind returns the failure classification recorded with the outcome.
func (o Outcome) Kind() string {
	return services.FailureKind(o.Err)
}

func (o Outcome) entry() history.Entry {
	return history.Entry{
		File:     o.Path,
		Status:   string(o.Status),
		Title:    o.Title,
		Target:   o.NewPath,
		Reason:   o.Reason(),
		Frames:   o.Frames,
		OCRCalls: o.OCRCalls,
		Fallback: o.Fallback,
		Duration: o.Elapsed,
	}
}

// Summary describes one directory run.
type Summary struct {
	RunID      string
	Directory  string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

// Counts tallies outcomes by status.
func (s Summary) Counts() history.Counts {
	var counts history.Counts
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusRenamed:
			counts.Renamed++
		case StatusPlanned:
			counts.Planned++
		case StatusUnresolved:
			counts.Unresolved++
		case StatusSkipped:
			counts.Skipped++
		case StatusFailed:
			counts.Failed++
		}
	}
	return counts
}
