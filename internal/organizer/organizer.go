package organizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"rollcall/internal/logging"
	"rollcall/internal/services"
	"rollcall/internal/textutil"
)

// ErrDestinationExists is returned when the target name is taken by a
// different file.
var ErrDestinationExists = errors.New("destination already exists")

// Plan describes a rename, carried out or not.
type Plan struct {
	Source string
	Target string
	// Changed is false when the file already has the target name.
	Changed bool
	DryRun  bool
}

// Renamer renames media files after their resolved titles.
type Renamer struct {
	DryRun bool
	Logger *slog.Logger
}

// TargetName returns the file name a source with extension ext receives for
// title, or "" when nothing usable remains after sanitizing.
func TargetName(title, ext string) string {
	base := textutil.SanitizeFileName(title)
	if base == "" {
		return ""
	}
	return base + ext
}

// Rename moves src to <dir>/<title><ext>.
func (r Renamer) Rename(ctx context.Context, src, title string) (Plan, error) {
	logger := logging.WithContext(ctx, r.logger())
	plan := Plan{Source: src, DryRun: r.DryRun}

	name := TargetName(title, filepath.Ext(src))
	if name == "" {
		return plan, services.Wrap(services.ErrValidation, "renaming", "build target name",
			"title is empty after sanitizing", nil)
	}
	plan.Target = filepath.Join(filepath.Dir(src), name)
	if plan.Target == src {
		logger.Debug("file already named for title", logging.String("target", name))
		return plan, nil
	}
	plan.Changed = true

	srcInfo, err := os.Stat(src)
	if err != nil {
		return plan, services.Wrap(services.ErrValidation, "renaming", "stat source", "source file unavailable", err)
	}
	if dstInfo, err := os.Stat(plan.Target); err == nil {
		if !os.SameFile(srcInfo, dstInfo) {
			return plan, services.Wrap(services.ErrValidation, "renaming", "check target",
				name, ErrDestinationExists)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return plan, services.Wrap(services.ErrExternalTool, "renaming", "check target", "cannot stat target", err)
	}

	if r.DryRun {
		logger.Info("planned rename",
			logging.String("source", filepath.Base(src)),
			logging.String("target", name),
			logging.String(logging.FieldEventType, "rename_planned"),
		)
		return plan, nil
	}

	if err := move(src, plan.Target); err != nil {
		return plan, services.Wrap(services.ErrExternalTool, "renaming", "move file", "rename failed", err)
	}
	logger.Info("renamed file",
		logging.String("source", filepath.Base(src)),
		logging.String("target", name),
		logging.String(logging.FieldEventType, "renamed"),
	)
	return plan, nil
}

func (r Renamer) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

