package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codecampus/gradebox/internal/config"
	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/metrics"
)

const statsInterval = 5 * time.Second

// Sweeper removes workspaces that outlived their run. Executions clean
// up after themselves; anything still on disk after SweepMaxAge is a
// crash leftover.
type Sweeper struct {
	SweeperCfg  *config.SweeperCfg
	root        string
	execService execution.IExecutionService
	logger      primary.Logger
	wg          sync.WaitGroup
}

func NewSweeper(
	sweeperCfg *config.SweeperCfg,
	root string,
	execService execution.IExecutionService,
	logger primary.Logger,
) *Sweeper {
	return &Sweeper{
		SweeperCfg:  sweeperCfg,
		root:        root,
		execService: execService,
		logger:      logger,
	}
}

// Start launches the sweep and stats loops. Wait blocks until both have
// seen ctx cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(2)

	ticker := time.NewTicker(s.SweeperCfg.SweepInterval)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepWorkspaces()
			}
		}
	}()

	statsTicker := time.NewTicker(statsInterval)
	go func() {
		defer s.wg.Done()
		defer statsTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-statsTicker.C:
				// Workers refresh the gauge on dequeue; this keeps it
				// honest while the pool is idle
				metrics.QueueDepth.Set(float64(s.execService.Stats().QueueDepth))
			}
		}
	}()
}

func (s *Sweeper) Wait() {
	s.wg.Wait()
}

func (s *Sweeper) sweepWorkspaces() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Error("Failed to read sandbox root", "root", s.root, "error", err)
		return
	}

	cutoff := time.Now().Add(-s.SweeperCfg.SweepMaxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Error("Failed to remove stale workspace", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Swept stale workspaces", "count", removed)
	}
}
