package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Counts tallies outcomes by status.
type Counts struct {
	Renamed    int
	Planned    int
	Unresolved int
	Skipped    int
	Failed     int
}

// Total returns the number of files counted.
func (c Counts) Total() int {
	return c.Renamed + c.Planned + c.Unresolved + c.Skipped + c.Failed
}

// Run is one invocation of `rollcall run` against a directory.
type Run struct {
	ID         string
	Directory  string
	Provider   string
	Model      string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     Counts
}

// Finished reports whether the run recorded a completion time.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Entry is the recorded outcome for one media file.
type Entry struct {
	File      string
	Status    string
	Title     string
	Target    string
	Reason    string
	Frames    int
	OCRCalls  int
	Fallback  bool
	Duration  time.Duration
	CreatedAt time.Time
}

// BeginRun inserts a new run row.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("history: run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, directory, provider, model, dry_run, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Directory, run.Provider, run.Model, boolInt(run.DryRun), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("history: begin run: %w", err)
	}
	return nil
}

// Record appends a file outcome to a run.
func (s *Store) Record(ctx context.Context, runID string, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO outcomes (run_id, file, status, title, target, reason, frames, ocr_calls, fallback, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, entry.File, entry.Status, entry.Title, entry.Target, entry.Reason,
		entry.Frames, entry.OCRCalls, boolInt(entry.Fallback), entry.Duration.Milliseconds(), formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("history: record outcome: %w", err)
	}
	return nil
}

// FinishRun stores the completion time and status counts.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time, counts Counts) error {
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}
	err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, renamed = ?, planned = ?, unresolved = ?, skipped = ?, failed = ? WHERE id = ?`,
		formatTime(finishedAt), counts.Renamed, counts.Planned, counts.Unresolved, counts.Skipped, counts.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, directory, provider, model, dry_run, started_at, finished_at,
		        renamed, planned, unresolved, skipped, failed
		   FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			dryRun   int
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Directory, &run.Provider, &run.Model, &dryRun, &started, &finished,
			&run.Counts.Renamed, &run.Counts.Planned, &run.Counts.Unresolved, &run.Counts.Skipped, &run.Counts.Failed); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		run.DryRun = dryRun != 0
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries returns the outcomes recorded for a run in insertion order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, status, title, target, reason, frames, ocr_calls, fallback, duration_ms, created_at
		   FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			fallback int
			millis   int64
			created  string
		)
		if err := rows.Scan(&entry.File, &entry.Status, &entry.Title, &entry.Target, &entry.Reason,
			&entry.Frames, &entry.OCRCalls, &fallback, &millis, &created); err != nil {
			return nil, fmt.Errorf("history: scan outcome: %w", err)
		}
		entry.Fallback = fallback != 0
		entry.Duration = time.Duration(millis) * time.Millisecond
		entry.CreatedAt = parseTime(created)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
