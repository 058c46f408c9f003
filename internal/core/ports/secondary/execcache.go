package secondary

import (
	"context"

	"github.com/codecampus/gradebox/internal/domain"
)

// ExecutionCache stores terminal execution results keyed by submission
// fingerprint so identical submissions skip the sandbox entirely.
type ExecutionCache interface {
	// Get returns the cached result for a fingerprint; (nil, nil) on miss
	Get(ctx context.Context, key string) (*domain.ExecutionResult, error)

	// Set stores a terminal result under a fingerprint
	Set(ctx context.Context, key string, result *domain.ExecutionResult) error
}
