package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAreaLifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "staging")
	area, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(area.Dir()), AreaPrefix) || area.ID() == "" {
		t.Fatalf("unexpected area %q id %q", area.Dir(), area.ID())
	}

	if err := os.WriteFile(filepath.Join(area.Dir(), "frame_00001.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(area.Dir(), "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := area.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	entries, err := os.ReadDir(area.Dir())
	if err != nil || len(entries) != 0 {
		t.Fatalf("area not empty after reset: %v %v", entries, err)
	}

	if err := area.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(area.Dir()); !os.IsNotExist(err) {
		t.Fatal("area should be removed")
	}
	if err := area.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestAreasAreUnique(t *testing.T) {
	root := t.TempDir()
	a, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Dir() == b.Dir() {
		t.Fatal("areas should not collide")
	}
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New(" "); err == nil {
		t.Fatal("expected error")
	}
}
