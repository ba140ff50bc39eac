package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	w := NewWriter(dir)

	path, err := w.Write("r.txt", "report body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "r.txt") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "report body" {
		t.Errorf("content = %q", data)
	}
}
