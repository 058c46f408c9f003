package grading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/ports/secondary"
	"github.com/codecampus/gradebox/internal/core/services/comparison"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/metrics"
	"github.com/codecampus/gradebox/internal/static/errs"
)

// maxDiffSide skips diff generation when either output is larger than
// this; a unified diff of megabyte outputs helps nobody.
const maxDiffSide = 16 << 10

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

var _ IGradingService = (*GradingService)(nil)

// GradingService implements the GradingService interface
type GradingService struct {
	executor execution.IExecutionService
	archive  secondary.GradeArchive // nil disables archiving
	logger   primary.Logger
}

// NewGradingService creates a new grading service
func NewGradingService(executor execution.IExecutionService, archive secondary.GradeArchive, logger primary.Logger) *GradingService {
	return &GradingService{
		executor: executor,
		archive:  archive,
		logger:   logger,
	}
}

// Grade runs every test case in order and aggregates the outcome
func (s *GradingService) Grade(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error) {
	runID := uuid.New()

	s.logger.Info("Grading submission",
		"runId", runID,
		"language", req.Language,
		"testCases", len(req.TestCases))

	if req.Language == "" {
		return nil, errs.MissingLanguage
	}
	if req.Source == "" {
		return nil, errs.MissingCode
	}

	cases := make([]domain.TestCase, len(req.TestCases))
	copy(cases, req.TestCases)
	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].OrderIndex < cases[j].OrderIndex
	})

	summary := &domain.GradeSummary{
		ID:        runID,
		Language:  req.Language,
		Results:   make([]domain.TestCaseResult, 0, len(cases)),
		CreatedAt: time.Now(),
	}

	for _, tc := range cases {
		if tc.ID == uuid.Nil {
			tc.ID = uuid.New()
		}
		summary.PointsTotal += tc.Points

		result, err := s.gradeCase(ctx, req, tc)
		if err != nil {
			return nil, err
		}

		if result.Passed {
			summary.PassedTests++
			summary.PointsAwarded += result.PointsAwarded
		}
		summary.Results = append(summary.Results, *result)
	}

	summary.TotalTests = len(summary.Results)
	if summary.TotalTests > 0 {
		summary.Score = round2(float64(summary.PassedTests) / float64(summary.TotalTests) * 100)
	}

	metrics.GradeRunsTotal.WithLabelValues(req.Language).Inc()
	s.logger.Info("Grading finished",
		"runId", runID,
		"score", summary.Score,
		"passed", summary.PassedTests,
		"total", summary.TotalTests)

	if s.archive != nil {
		// Archiving is best effort; the caller still gets the summary
		if err := s.archive.SaveGradeRun(ctx, summary); err != nil {
			s.logger.Error("Failed to archive grade run", "runId", runID, "error", err)
		}
	}

	return summary, nil
}

// gradeCase runs one test case. Request-level faults (unknown language,
// saturated pool, caller cancellation) come back as errors and abort the
// batch; anything scoped to this case becomes a failed result instead.
func (s *GradingService) gradeCase(ctx context.Context, req *domain.GradeRequest, tc domain.TestCase) (*domain.TestCaseResult, error) {
	result := &domain.TestCaseResult{
		TestCaseID:     tc.ID,
		OrderIndex:     tc.OrderIndex,
		IsHidden:       tc.IsHidden,
		ExpectedOutput: tc.ExpectedOutput,
	}

	execRes, err := s.executor.Execute(ctx, &domain.ExecutionRequest{
		Language: req.Language,
		Source:   req.Source,
		Stdin:    tc.Input,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, errs.UnsupportedLanguage) || errors.Is(err, errs.Busy) {
			return nil, err
		}
		s.logger.Error("Test case execution failed", "testCaseId", tc.ID, "error", err)
		result.Status = domain.StatusInternalError
		result.ErrorMessage = "execution failed"
		return result, nil
	}

	result.Status = execRes.Status
	result.ActualOutput = execRes.Stdout
	result.ErrorMessage = execRes.ErrorMessage
	result.ExecutionTimeMs = execRes.ExecutionTimeMs
	result.MemoryUsedKB = execRes.MemoryUsedKB

	result.Passed = execRes.Success && comparison.Compare(execRes.Stdout, tc.ExpectedOutput, req.ComparisonMode)
	if result.Passed {
		result.PointsAwarded = tc.Points
	} else if execRes.Success {
		// Clean run, wrong answer: show where the output diverged
		result.Diff = buildDiff(tc.ExpectedOutput, execRes.Stdout)
	}

	return result, nil
}

// GetGradeRun fetches an archived run by ID
func (s *GradingService) GetGradeRun(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error) {
	s.logger.Debug("Getting grade run", "runId", runID)

	if s.archive == nil {
		return nil, errs.ArchiveDisabled
	}

	summary, err := s.archive.GetGradeRun(ctx, runID)
	if err != nil {
		s.logger.Error("Failed to get grade run", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get grade run: %w", err)
	}
	if summary == nil {
		return nil, errs.GradeRunNotFound
	}

	return summary, nil
}

// ListGradeRuns fetches the most recent archived runs, newest first
func (s *GradingService) ListGradeRuns(ctx context.Context, limit int) ([]*domain.GradeSummary, error) {
	s.logger.Debug("Listing grade runs", "limit", limit)

	if s.archive == nil {
		return nil, errs.ArchiveDisabled
	}
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}

	summaries, err := s.archive.ListGradeRuns(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list grade runs", "error", err)
		return nil, fmt.Errorf("failed to list grade runs: %w", err)
	}

	return summaries, nil
}

func buildDiff(expected, actual string) []string {
	if len(expected) > maxDiffSide || len(actual) > maxDiffSide {
		return nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		FromFile: "expected",
		B:        difflib.SplitLines(actual),
		ToFile:   "actual",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil || text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
