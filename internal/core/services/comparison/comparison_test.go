package comparison

import (
	"testing"

	"github.com/codecampus/gradebox/internal/domain"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
		mode     domain.ComparisonMode
		want     bool
	}{
		{"exact match", "hello", "hello", domain.CompareExact, true},
		{"exact mismatch", "hello", "world", domain.CompareExact, false},
		{"exact trims whitespace", "  hello\n", "hello", domain.CompareExact, true},
		{"exact is case sensitive", "Hello", "hello", domain.CompareExact, false},
		{"exact empty both", "", "", domain.CompareExact, true},
		{"exact empty vs nonempty", "", "x", domain.CompareExact, false},

		{"numeric equal representations", "3.0", "3", domain.CompareNumeric, true},
		{"numeric within tolerance", "0.3000000001", "0.3", domain.CompareNumeric, true},
		{"numeric outside tolerance", "0.31", "0.3", domain.CompareNumeric, false},
		{"numeric trims whitespace", " 42 \n", "42", domain.CompareNumeric, true},
		{"numeric negative", "-7", "-7.0", domain.CompareNumeric, true},
		{"numeric parse failure falls back to exact", "abc", "abc", domain.CompareNumeric, true},
		{"numeric parse failure exact mismatch", "abc", "3", domain.CompareNumeric, false},
		{"numeric one side unparseable", "3", "three", domain.CompareNumeric, false},

		{"contains substring", "the answer is 42!", "42", domain.CompareContains, true},
		{"contains case insensitive", "Hello World", "hello", domain.CompareContains, true},
		{"contains missing", "nope", "42", domain.CompareContains, false},
		{"contains empty expected", "anything", "", domain.CompareContains, true},

		{"exact same strings fail numeric semantics", "3.0", "3", domain.CompareExact, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.actual, tt.expected, tt.mode); got != tt.want {
				t.Errorf("Compare(%q, %q, %q) = %v, want %v", tt.actual, tt.expected, tt.mode, got, tt.want)
			}
		})
	}
}

func TestParseComparisonMode(t *testing.T) {
	tests := []struct {
		in   string
		want domain.ComparisonMode
	}{
		{"exact", domain.CompareExact},
		{"numeric", domain.CompareNumeric},
		{"contains", domain.CompareContains},
		{"", domain.CompareExact},
		{"fuzzy", domain.CompareExact},
	}

	for _, tt := range tests {
		if got := domain.ParseComparisonMode(tt.in); got != tt.want {
			t.Errorf("ParseComparisonMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnknownModeBehavesAsExact(t *testing.T) {
	if !Compare("hello", "hello", domain.ComparisonMode("fuzzy")) {
		t.Error("unknown mode should fall back to exact matching")
	}
	if Compare("3.0", "3", domain.ComparisonMode("fuzzy")) {
		t.Error("unknown mode must not behave numerically")
	}
}
