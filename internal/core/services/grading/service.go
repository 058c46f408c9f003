package grading

import (
	"context"

	"github.com/google/uuid"

	"github.com/codecampus/gradebox/internal/domain"
)

// IGradingService defines the interface for grading submissions against
// test suites
type IGradingService interface {
	// Grade runs every test case in order and aggregates the outcome.
	// One failing case never aborts the rest of the batch; only a
	// malformed request, an unknown language, a full queue or caller
	// cancellation fails the call itself.
	Grade(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error)

	// GetGradeRun fetches an archived run by ID
	GetGradeRun(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error)

	// ListGradeRuns fetches the most recent archived runs, newest first
	ListGradeRuns(ctx context.Context, limit int) ([]*domain.GradeSummary, error)
}
