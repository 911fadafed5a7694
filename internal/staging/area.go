package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AreaPrefix marks directories created by New.
const AreaPrefix = "run-"

// Area is a per-run scratch directory.
type Area struct {
	id  string
	dir string
}

// New creates a fresh area under root.
func New(root string) (*Area, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("staging: root directory required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create root: %w", err)
	}
	id := uuid.NewString()
	dir := filepath.Join(root, AreaPrefix+id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create area: %w", err)
	}
	return &Area{id: id, dir: dir}, nil
}

// ID returns the area's unique identifier.
func (a *Area) ID() string { return a.id }

// Dir returns the area path.
func (a *Area) Dir() string { return a.dir }

// Reset removes everything inside the area, leaving it empty.
func (a *Area) Reset() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(a.dir, 0o755)
		}
		return fmt.Errorf("staging: read area: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(a.dir, entry.Name())); err != nil {
			return fmt.Errorf("staging: clear area: %w", err)
		}
	}
	return nil
}

// Release removes the area. It is safe to call more than once.
func (a *Area) Release() error {
	if a == nil || a.dir == "" {
		return nil
	}
	if err := os.RemoveAll(a.dir); err != nil {
		return fmt.Errorf("staging: remove area: %w", err)
	}
	return nil
}
