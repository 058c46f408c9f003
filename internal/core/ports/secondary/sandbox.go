package secondary

import (
	"context"

	"github.com/codecampus/gradebox/internal/domain"
)

// Sandbox executes one compile-and-run pipeline inside an isolated
// workspace under the given limits.
//
// The error return is reserved for infrastructure faults (workspace
// creation, caller cancellation). Every student-visible outcome,
// compilation errors included, is reported inside ExecutionResult.
type Sandbox interface {
	Run(ctx context.Context, spec domain.LanguageSpec, req *domain.ExecutionRequest, limits domain.SandboxLimits) (*domain.ExecutionResult, error)
}
