package procsandbox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// workspace is the private directory one run lives in. Every file the
// run touches (source, artifacts, scratch) stays inside; Close removes
// it all.
type workspace struct {
	dir string
}

func newWorkspace(root string) (*workspace, error) {
	dir := filepath.Join(root, uuid.New().String())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) WriteSource(name, content string) error {
	if err := os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write source file: %w", err)
	}
	return nil
}

func (w *workspace) Close() error {
	return os.RemoveAll(w.dir)
}
