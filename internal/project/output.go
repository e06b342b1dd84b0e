package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// WriteProgram writes a generated program to dir under the file name derived
// from cfg (KF_<start>_<end>_<step>.gcode) and returns the full path.
// An empty dir means the working directory.
func WriteProgram(dir string, cfg model.Config, program io.WriterTo) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, cfg.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := program.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
