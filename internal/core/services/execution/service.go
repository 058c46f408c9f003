package execution

import (
	"context"

	"github.com/codecampus/gradebox/internal/domain"
)

// IExecutionService defines the interface for running submissions
// through the sandbox worker pool
type IExecutionService interface {
	// Execute runs one submission and blocks until its result is ready.
	// A full queue fails fast with errs.Busy; an unknown language fails
	// with errs.UnsupportedLanguage before any work is queued.
	Execute(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error)

	// Start launches the worker pool; workers exit when ctx is canceled
	Start(ctx context.Context)

	// Wait blocks until every worker has exited
	Wait()

	// Stats reports a point-in-time view of the pool
	Stats() domain.PoolStats
}
