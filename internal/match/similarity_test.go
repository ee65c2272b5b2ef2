package match

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestCombinedSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "seoul", "seoul", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"single substitution at tail", "seoul", "seoup", 0.86},
		{"single trailing insertion", "abcdefghij", "abcdefghijk", 0.9455},
	}

	for _, tt := range tests {
		got := CombinedSimilarity(tt.a, tt.b)
		if !approxEqual(got, tt.want) {
			t.Errorf("%s: CombinedSimilarity(%q, %q) = %.4f, want %.4f", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCombinedSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"jungang", "jungangg"},
		{"정자", "정자문고"},
		{"seoul", "seoup"},
	}
	for _, p := range pairs {
		ab := CombinedSimilarity(p[0], p[1])
		ba := CombinedSimilarity(p[1], p[0])
		if !approxEqual(ab, ba) {
			t.Errorf("asymmetric: (%q,%q)=%.4f but (%q,%q)=%.4f", p[0], p[1], ab, p[1], p[0], ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("score out of range for (%q,%q): %.4f", p[0], p[1], ab)
		}
	}
}

func TestJaroWinkler(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "marhta", 0.9611},
		{"dixon", "dicksonx", 0.8133},
		{"seoul", "seoul", 1.0},
		{"abc", "xyz", 0.0},
	}

	for _, tt := range tests {
		got := JaroWinkler(tt.a, tt.b)
		if !approxEqual(got, tt.want) {
			t.Errorf("JaroWinkler(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"seoul", "seoul", 1.0},
		{"", "abcd", 0.0},
		{"도서", "도서관", 1.0 - 1.0/3.0},
	}

	for _, tt := range tests {
		got := LevenshteinSimilarity(tt.a, tt.b)
		if !approxEqual(got, tt.want) {
			t.Errorf("LevenshteinSimilarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
		}
	}
}
