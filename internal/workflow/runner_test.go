package workflow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"rollcall/internal/credits"
	"rollcall/internal/framefilter"
	"rollcall/internal/history"
	"rollcall/internal/identify"
	"rollcall/internal/organizer"
	"rollcall/internal/sampling"
	"rollcall/internal/services"
	"rollcall/internal/staging"
	"rollcall/internal/title"
)

type fakeProber struct {
	durations map[string]float64
	errs      map[string]error
}

func (f *fakeProber) Duration(_ context.Context, path string) (float64, bool, error) {
	name := filepath.Base(path)
	if err := f.errs[name]; err != nil {
		return 0, false, err
	}
	d, ok := f.durations[name]
	return d, ok, nil
}

// fakeFrames writes count flat gray PNGs into the staging directory.
type fakeFrames struct {
	count   int
	errs    map[string]error
	windows map[string]sampling.Window
}

func (f *fakeFrames) Extract(_ context.Context, input string, window sampling.Window, dir string) ([]string, error) {
	name := filepath.Base(input)
	if f.windows == nil {
		f.windows = map[string]sampling.Window{}
	}
	f.windows[name] = window
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	paths := make([]string, 0, f.count)
	for i := 1; i <= f.count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := writeFlatPNG(path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFlatPNG(path string) error {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

type fakeIdentifier struct {
	titles map[string]string
	calls  int
}

func (f *fakeIdentifier) Run(ctx context.Context, frames []string) identify.Result {
	f.calls++
	file, _ := services.FileFromContext(ctx)
	raw := f.titles[file]
	guess := title.Normalize(raw)
	state := identify.StateUnresolved
	if guess.Known() {
		state = identify.StateResolved
	}
	return identify.Result{
		State:       state,
		Stopped:     identify.StateExhausted,
		Guess:       guess,
		Frames:      len(frames),
		OCRCalls:    len(frames),
		Productive:  len(frames),
		RefineCalls: len(frames),
	}
}

type countingOCR struct{ calls int }

func (c *countingOCR) ExtractCredits(context.Context, string) (credits.Extraction, error) {
	c.calls++
	return credits.Extraction{Entries: []credits.Entry{{Label: "Cast", Values: []string{"A"}}}}, nil
}

type constantRefiner struct{ calls int }

func (c *constantRefiner) RefineTitle(context.Context, credits.View, string) (string, error) {
	c.calls++
	return "Never Used (1999)", nil
}

type recordingHistory struct {
	begun    []history.Run
	entries  []history.Entry
	finished []history.Counts
}

func (h *recordingHistory) BeginRun(_ context.Context, run history.Run) error {
	h.begun = append(h.begun, run)
	return nil
}

func (h *recordingHistory) Record(_ context.Context, _ string, entry history.Entry) error {
	h.entries = append(h.entries, entry)
	return nil
}

func (h *recordingHistory) FinishRun(_ context.Context, _ string, _ time.Time, counts history.Counts) error {
	h.finished = append(h.finished, counts)
	return nil
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	state := t.TempDir()
	return &Runner{
		StagingRoot: filepath.Join(state, "staging"),
		LockDir:     filepath.Join(state, "locks"),
		Prober:      &fakeProber{durations: map[string]float64{}},
		Frames:      &fakeFrames{count: 3},
		Identifier:  &fakeIdentifier{},
		Renamer:     organizer.Renamer{},
	}
}

func outcomeFor(t *testing.T, summary Summary, name string) Outcome {
	t.Helper()
	for _, o := range summary.Outcomes {
		if filepath.Base(o.Path) == name {
			return o
		}
	}
	t.Fatalf("no outcome for %s in %+v", name, summary.Outcomes)
	return Outcome{}
}

func TestRunAllFramesFilteredLeavesFileUnresolved(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "credits.mkv")

	ocr := &countingOCR{}
	refiner := &constantRefiner{}
	runner := newTestRunner(t)
	runner.Prober = &fakeProber{durations: map[string]float64{"credits.mkv": 1800}}
	runner.Frames = &fakeFrames{count: 5}
	runner.Identifier = &identify.Loop{
		Filter:  framefilter.Filter{},
		OCR:     ocr,
		Refiner: refiner,
	}

	summary, err := runner.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outcome := outcomeFor(t, summary, "credits.mkv")
	if outcome.Status != StatusUnresolved {
		t.Fatalf("status = %s, want unresolved (%v)", outcome.Status, outcome.Err)
	}
	if ocr.calls != 0 || refiner.calls != 0 || outcome.OCRCalls != 0 {
		t.Fatalf("expected no OCR or refine calls, got ocr=%d refine=%d", ocr.calls, refiner.calls)
	}
	if outcome.Filtered != 5 {
		t.Fatalf("filtered = %d, want 5", outcome.Filtered)
	}
	if !errors.Is(outcome.Err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", outcome.Err)
	}
	if _, err := os.Stat(filepath.Join(dir, "credits.mkv")); err != nil {
		t.Fatalf("file should not be renamed: %v", err)
	}
}

func TestRunClassifiesEachFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mkv", "b.mp4", "c.avi", "d.mov", "notes.txt")

	rec := &recordingHistory{}
	frames := &fakeFrames{count: 2, errs: map[string]error{"c.avi": errors.New("ffmpeg exited 1")}}
	runner := newTestRunner(t)
	runner.Prober = &fakeProber{
		durations: map[string]float64{"a.mkv": 5000, "c.avi": 100, "d.mov": 1800},
		errs:      map[string]error{},
	}
	runner.Frames = frames
	runner.Identifier = &fakeIdentifier{titles: map[string]string{"a.mkv": "Alpha (2001)"}}
	runner.History = rec
	runner.Provider = "gemini"

	var seen []string
	runner.OnOutcome = func(o Outcome) { seen = append(seen, filepath.Base(o.Path)) }

	summary, err := runner.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(summary.Outcomes))
	}
	if strings.Join(seen, ",") != "a.mkv,b.mp4,c.avi,d.mov" {
		t.Fatalf("processing order = %v", seen)
	}

	a := outcomeFor(t, summary, "a.mkv")
	if a.Status != StatusRenamed || a.Title != "Alpha (2001)" {
		t.Fatalf("a.mkv outcome = %+v", a)
	}
	if a.NewPath != filepath.Join(summary.Directory, "Alpha (2001).mkv") {
		t.Fatalf("a.mkv new path = %s", a.NewPath)
	}
	if _, err := os.Stat(a.NewPath); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if w := frames.windows["a.mkv"]; w.Start != 4790 || w.FPS != "1/3" {
		t.Fatalf("a.mkv window = %+v", w)
	}
	if w := frames.windows["d.mov"]; w.Start != 1710 {
		t.Fatalf("d.mov window = %+v", w)
	}

	b := outcomeFor(t, summary, "b.mp4")
	if b.Status != StatusSkipped || !errors.Is(b.Err, services.ErrValidation) {
		t.Fatalf("b.mp4 outcome = %+v", b)
	}
	c := outcomeFor(t, summary, "c.avi")
	if c.Status != StatusSkipped || !errors.Is(c.Err, services.ErrExternalTool) {
		t.Fatalf("c.avi outcome = %+v", c)
	}
	d := outcomeFor(t, summary, "d.mov")
	if d.Status != StatusUnresolved || d.Kind() != "not_found" {
		t.Fatalf("d.mov outcome = %+v", d)
	}

	counts := summary.Counts()
	want := history.Counts{Renamed: 1, Skipped: 2, Unresolved: 1}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	if len(rec.begun) != 1 || rec.begun[0].ID != summary.RunID || rec.begun[0].Provider != "gemini" {
		t.Fatalf("history begin = %+v", rec.begun)
	}
	if len(rec.entries) != 4 || len(rec.finished) != 1 || rec.finished[0] != want {
		t.Fatalf("history entries=%d finished=%+v", len(rec.entries), rec.finished)
	}
	if rec.entries[1].Reason == "" {
		t.Fatal("skipped entry should carry a reason")
	}
}

func TestRunDryRunLeavesFilesInPlace(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")

	runner := newTestRunner(t)
	runner.DryRun = true
	runner.Renamer = organizer.Renamer{DryRun: true}
	runner.Prober = &fakeProber{durations: map[string]float64{"movie.mkv": 100}}
	runner.Identifier = &fakeIdentifier{titles: map[string]string{"movie.mkv": "Show_S01E02"}}

	summary, err := runner.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outcome := outcomeFor(t, summary, "movie.mkv")
	if outcome.Status != StatusPlanned || filepath.Base(outcome.NewPath) != "Show_S01E02.mkv" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !summary.DryRun {
		t.Fatal("summary should report dry run")
	}
	if _, err := os.Stat(filepath.Join(dir, "movie.mkv")); err != nil {
		t.Fatalf("dry run touched the file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Show_S01E02.mkv")); !os.IsNotExist(err) {
		t.Fatalf("dry run created the target: %v", err)
	}
}

func TestRunCollisionFailsWithoutOverwriting(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Alpha (2001).mkv", "z.mkv")

	runner := newTestRunner(t)
	runner.Prober = &fakeProber{durations: map[string]float64{"Alpha (2001).mkv": 100, "z.mkv": 100}}
	runner.Identifier = &fakeIdentifier{titles: map[string]string{"z.mkv": "Alpha (2001)"}}

	summary, err := runner.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	z := outcomeFor(t, summary, "z.mkv")
	if z.Status != StatusFailed || !errors.Is(z.Err, organizer.ErrDestinationExists) {
		t.Fatalf("z.mkv outcome = %+v", z)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Alpha (2001).mkv"))
	if err != nil || string(data) != "Alpha (2001).mkv" {
		t.Fatalf("existing file was modified: %q %v", data, err)
	}
}

func TestRunFailsFastWhenLocked(t *testing.T) {
	dir := t.TempDir()
	runner := newTestRunner(t)
	if err := os.MkdirAll(runner.LockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	held := flock.New(LockPath(runner.LockDir, abs))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	_, err = runner.Run(context.Background(), dir)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunRejectsMissingDirectory(t *testing.T) {
	runner := newTestRunner(t)
	_, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mkv", "b.mkv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordingHistory{}
	runner := newTestRunner(t)
	runner.Prober = &fakeProber{durations: map[string]float64{"a.mkv": 100, "b.mkv": 100}}
	runner.History = rec
	runner.OnOutcome = func(Outcome) { cancel() }

	summary, err := runner.Run(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(summary.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome before cancellation, got %d", len(summary.Outcomes))
	}
	if len(rec.finished) != 1 {
		t.Fatal("interrupted run should still be finished in history")
	}
}

func TestRunReleasesStagingAndSweepsStale(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mkv")
	runner := newTestRunner(t)
	runner.Prober = &fakeProber{durations: map[string]float64{"a.mkv": 100}}

	stale := filepath.Join(runner.StagingRoot, staging.AreaPrefix+"old")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	if _, err := runner.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	entries, err := os.ReadDir(runner.StagingRoot)
	if err != nil {
		t.Fatalf("read staging root: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("staging root not empty: %v", names)
	}
}

func TestLockPathIsStablePerDirectory(t *testing.T) {
	a := LockPath("/locks", "/media/a")
	if a != LockPath("/locks", "/media/a/") {
		t.Fatal("lock path should ignore trailing slash")
	}
	if a == LockPath("/locks", "/media/b") {
		t.Fatal("different directories should not share a lock")
	}
}
