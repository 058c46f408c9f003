// Package comparison matches actual program output against expected
// output. Everything here is pure: no I/O, no logging, no state.
package comparison

import (
	"math"
	"strconv"
	"strings"

	"github.com/codecampus/gradebox/internal/domain"
)

const numericTolerance = 1e-6

// Compare reports whether actual output matches expected output under
// the given mode. Both sides are trimmed of leading and trailing
// whitespace first; unknown modes behave as exact.
func Compare(actual, expected string, mode domain.ComparisonMode) bool {
	actual = strings.TrimSpace(actual)
	expected = strings.TrimSpace(expected)

	switch mode {
	case domain.CompareNumeric:
		return compareNumeric(actual, expected)
	case domain.CompareContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	default:
		return actual == expected
	}
}

// compareNumeric parses both sides as floats and compares within an
// absolute tolerance. If either side does not parse, it falls back to
// exact matching.
func compareNumeric(actual, expected string) bool {
	a, errA := strconv.ParseFloat(actual, 64)
	e, errE := strconv.ParseFloat(expected, 64)
	if errA != nil || errE != nil {
		return actual == expected
	}
	return math.Abs(a-e) < numericTolerance
}
