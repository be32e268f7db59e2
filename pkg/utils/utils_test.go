package utils

import (
	"math"
	"strings"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		values   []float64
		expected float64
	}{
		{nil, 0},
		{[]float64{10}, 10},
		{[]float64{10, 15}, 12.5},
		{[]float64{1, 2, 3, 4}, 2.5},
	}

	for _, tt := range tests {
		if got := Mean(tt.values); got != tt.expected {
			t.Errorf("Mean(%v) = %f, expected %f", tt.values, got, tt.expected)
		}
	}
}

func TestGeometricMean(t *testing.T) {
	tests := []struct {
		values   []float64
		expected float64
	}{
		{[]float64{4}, 4},
		{[]float64{2, 8}, 4},
		{[]float64{1.0 / 13, 1.0 / 12.5, 0.1}, math.Cbrt(1.0 / 13 / 12.5 * 0.1)},
		{[]float64{1, 1, 1, 1}, 1},
	}

	for _, tt := range tests {
		got := GeometricMean(tt.values...)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("GeometricMean(%v) = %g, expected %g", tt.values, got, tt.expected)
		}
	}

	if !math.IsNaN(GeometricMean()) {
		t.Error("GeometricMean() of nothing should be NaN")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Error("1.5 is finite")
	}
	if IsFinite(math.Inf(1)) || IsFinite(math.NaN()) {
		t.Error("Inf and NaN are not finite")
	}
}

func TestGenerateRunID(t *testing.T) {
	id1 := GenerateRunID("iterative")
	id2 := GenerateRunID("iterative")

	if id1 == id2 {
		t.Error("GenerateRunID should return unique IDs")
	}
	if !strings.HasPrefix(id1, "iterative-") {
		t.Errorf("GenerateRunID should start with the mode: %s", id1)
	}
}
