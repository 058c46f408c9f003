package sweeper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codecampus/gradebox/internal/adapter/logging"
	"github.com/codecampus/gradebox/internal/config"
)

func TestSweepRemovesOnlyStaleWorkspaces(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, "0c6670e2-5f3a-4f6e-9f6a-1f4b4a3d9a01")
	fresh := filepath.Join(root, "9d1c41b7-2a8e-4d07-8f3b-6c2e0d5b7f02")
	for _, dir := range []string{stale, fresh} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create workspace: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("print(1)"), 0o644); err != nil {
			t.Fatalf("failed to write source: %v", err)
		}
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("failed to age workspace: %v", err)
	}

	// A stray file should never be touched, stale or not
	strayFile := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(strayFile, []byte("keep"), 0o644); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}
	if err := os.Chtimes(strayFile, old, old); err != nil {
		t.Fatalf("failed to age stray file: %v", err)
	}

	cfg := &config.SweeperCfg{
		SweepInterval: time.Minute,
		SweepMaxAge:   10 * time.Minute,
	}
	s := NewSweeper(cfg, root, nil, logging.NewNopLogger())
	s.sweepWorkspaces()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale workspace should be gone, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh workspace should survive: %v", err)
	}
	if _, err := os.Stat(strayFile); err != nil {
		t.Fatalf("stray file should survive: %v", err)
	}
}

func TestSweepToleratesMissingRoot(t *testing.T) {
	cfg := &config.SweeperCfg{
		SweepInterval: time.Minute,
		SweepMaxAge:   10 * time.Minute,
	}
	s := NewSweeper(cfg, filepath.Join(t.TempDir(), "nope"), nil, logging.NewNopLogger())

	// Must log and carry on, not panic
	s.sweepWorkspaces()
}
