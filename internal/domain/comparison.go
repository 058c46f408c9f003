package domain

// ComparisonMode selects how actual output is matched against expected
// output during grading.
type ComparisonMode string

const (
	CompareExact    ComparisonMode = "exact"
	CompareNumeric  ComparisonMode = "numeric"
	CompareContains ComparisonMode = "contains"
)

// ParseComparisonMode maps a request string to a mode. Unknown or empty
// strings fall back to exact matching.
func ParseComparisonMode(s string) ComparisonMode {
	switch ComparisonMode(s) {
	case CompareNumeric:
		return CompareNumeric
	case CompareContains:
		return CompareContains
	default:
		return CompareExact
	}
}
