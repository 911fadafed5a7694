package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScanTopLevelSortedFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.MKV", "a.mp4", "c.txt", "d.mov", "nested/e.mp4", ".hidden.avi"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.mkv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := Scan(dir, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{
		filepath.Join(dir, ".hidden.avi"),
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.MKV"),
		filepath.Join(dir, "d.mov"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
}

func TestScanCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp4"))
	touch(t, filepath.Join(dir, "b.webm"))

	got, err := Scan(dir, []string{"WEBM", " "})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "b.webm" {
		t.Fatalf("Scan = %v", got)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("expected error")
	}
}
