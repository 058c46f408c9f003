package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestCaseResult represents the result of a single test case execution
type TestCaseResult struct {
	TestCaseID     uuid.UUID `json:"test_case_id"`
	OrderIndex     int       `json:"order_index"`
	IsHidden       bool      `json:"is_hidden"`
	Passed         bool      `json:"passed"`
	Status         Status    `json:"status"`
	ActualOutput   string    `json:"actual_output"`
	ExpectedOutput string    `json:"expected_output"`
	// Diff holds unified-diff lines for clean runs whose output did not
	// match; empty otherwise.
	Diff            []string `json:"diff,omitempty"`
	ErrorMessage    string   `json:"error,omitempty"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	MemoryUsedKB    int64    `json:"memory_used_kb"`
	PointsAwarded   float64  `json:"points_awarded"`
}

// GradeSummary represents the aggregate result of grading one submission
// against its test suite.
type GradeSummary struct {
	ID            uuid.UUID        `json:"id"`
	Language      string           `json:"language"`
	Score         float64          `json:"score"`
	TotalTests    int              `json:"total_tests"`
	PassedTests   int              `json:"passed_tests"`
	PointsTotal   float64          `json:"points_total"`
	PointsAwarded float64          `json:"points_awarded"`
	Results       []TestCaseResult `json:"results"`
	CreatedAt     time.Time        `json:"created_at"`
}

type GradeRunTable struct {
	ID            string
	Language      string
	Score         string
	TotalTests    string
	PassedTests   string
	PointsTotal   string
	PointsAwarded string
	CreatedAt     string
}

func GetGradeRunTable() GradeRunTable {
	return GradeRunTable{
		ID:            "id",
		Language:      "language",
		Score:         "score",
		TotalTests:    "total_tests",
		PassedTests:   "passed_tests",
		PointsTotal:   "points_total",
		PointsAwarded: "points_awarded",
		CreatedAt:     "created_at",
	}
}

func (GradeRunTable) TableName() string {
	return "grade_runs"
}

type GradeRunTestTable struct {
	RunID           string
	TestCaseID      string
	Ordinal         string
	Hidden          string
	Passed          string
	Status          string
	ActualOutput    string
	ErrorMessage    string
	ExecutionTimeMs string
	MemoryUsedKB    string
	PointsAwarded   string
}

func GetGradeRunTestTable() GradeRunTestTable {
	return GradeRunTestTable{
		RunID:           "run_id",
		TestCaseID:      "test_case_id",
		Ordinal:         "ordinal",
		Hidden:          "hidden",
		Passed:          "passed",
		Status:          "status",
		ActualOutput:    "actual_output",
		ErrorMessage:    "error_message",
		ExecutionTimeMs: "execution_time_ms",
		MemoryUsedKB:    "memory_used_kb",
		PointsAwarded:   "points_awarded",
	}
}

func (GradeRunTestTable) TableName() string {
	return "grade_run_tests"
}
