package secondary

import (
	"context"

	"github.com/google/uuid"

	"github.com/codecampus/gradebox/internal/domain"
)

// GradeArchive defines the interface for persisting and retrieving
// completed grade runs
type GradeArchive interface {
	// SaveGradeRun persists a summary together with its per-test rows
	SaveGradeRun(ctx context.Context, summary *domain.GradeSummary) error

	// GetGradeRun retrieves an archived run by ID; (nil, nil) when absent
	GetGradeRun(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error)

	// ListGradeRuns returns the most recent runs, newest first, without
	// their per-test rows
	ListGradeRuns(ctx context.Context, limit int) ([]*domain.GradeSummary, error)
}
