package domain

import "github.com/google/uuid"

// TestCase represents a test case for grading
type TestCase struct {
	ID             uuid.UUID `json:"id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	// IsHidden is a presentation flag only. Hidden cases are graded
	// exactly like visible ones; the boundary redacts their outputs.
	IsHidden   bool    `json:"is_hidden"`
	Points     float64 `json:"points"`
	OrderIndex int     `json:"order_index"`
}

// GradeRequest carries one submission and the suite it is graded against
type GradeRequest struct {
	Language       string         `json:"language"`
	Source         string         `json:"source"`
	TestCases      []TestCase     `json:"test_cases"`
	ComparisonMode ComparisonMode `json:"comparison_mode"`
}
