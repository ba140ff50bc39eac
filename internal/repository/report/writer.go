// Package report writes rendered reports to the local filesystem.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/studentmate/tutor/internal/domain"
)

// Writer stores reports under a fixed directory.
type Writer struct {
	dir string
}

// NewWriter creates a filesystem report writer.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write persists a report and returns its full path. Filesystem failures
// are wrapped with domain.ErrExternalService.
func (w *Writer) Write(name, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %v: %w", err, domain.ErrExternalService)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %v: %w", err, domain.ErrExternalService)
	}
	return path, nil
}
