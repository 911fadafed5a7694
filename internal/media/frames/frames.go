package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Pattern is the file name template frames are written with.
const Pattern = "frame_%05d.png"

// Request describes one extraction.
type Request struct {
	Binary    string
	Input     string
	Start     float64
	FPS       string
	OutputDir string
}

// Args returns the ffmpeg arguments for req, without the binary name.
func Args(req Request) []string {
	start := req.Start
	if start < 0 {
		start = 0
	}
	return ffmpeg.
		Input(req.Input, ffmpeg.KwArgs{"ss": strconv.FormatFloat(start, 'f', 3, 64)}).
		Filter("fps", ffmpeg.Args{req.FPS}).
		Output(filepath.Join(req.OutputDir, Pattern)).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// Extract writes frames for req into req.OutputDir and returns their paths
// in order. The directory must exist.
func Extract(ctx context.Context, req Request) ([]string, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, errors.New("extract frames: empty input")
	}
	if strings.TrimSpace(req.FPS) == "" {
		return nil, errors.New("extract frames: empty fps expression")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, errors.New("extract frames: empty output dir")
	}
	binary := strings.TrimSpace(req.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, Args(req)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("extract frames: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return List(req.OutputDir)
}

// List returns the frame files in dir ordered by their numeric index.
// Files not matching the frame naming scheme are ignored.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	type indexed struct {
		index int
		path  string
	}
	found := make([]indexed, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		idx, ok := frameIndex(entry.Name())
		if !ok {
			continue
		}
		found = append(found, indexed{index: idx, path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })
	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

func frameIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "frame_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".png")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
