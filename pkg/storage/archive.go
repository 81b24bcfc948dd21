package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportArchive keeps rendered session reports under a base directory.
type ReportArchive struct {
	baseDir string
	now     func() time.Time
}

// NewReportArchive creates baseDir when missing.
func NewReportArchive(baseDir string) (*ReportArchive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &ReportArchive{baseDir: baseDir, now: time.Now}, nil
}

// Save writes data as filename and returns the full path. Names may not
// escape the base directory.
func (a *ReportArchive) Save(filename string, data []byte) (string, error) {
	path, err := a.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Prune removes reports older than retention and returns their names.
// A zero retention keeps everything.
func (a *ReportArchive) Prune(retention time.Duration) ([]string, error) {
	if retention <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read report directory: %w", err)
	}
	cutoff := a.now().Add(-retention)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.baseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

func (a *ReportArchive) resolve(filename string) (string, error) {
	clean := filepath.Base(filename)
	if clean != filename || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid report name %q", filename)
	}
	return filepath.Join(a.baseDir, clean), nil
}
