package testutil

import (
	"math"
	"testing"
)

// RoundingTolerance is the largest difference between a value and its
// rounding to places decimals, plus slack for the float64 error of the
// unrounded reference.
func RoundingTolerance(places int) float64 {
	return 0.5*math.Pow10(-places) + 1e-12
}

// RequireRounded fails t unless every element of got is want rounded to
// places decimals, within RoundingTolerance. Use it to compare emitted
// samples against unrounded reference formulas.
func RequireRounded(t *testing.T, got, want []float64, places int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	tol := RoundingTolerance(places)
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > tol {
			t.Fatalf("index %d: got %v, want %v to %d places (diff %v)", i, got[i], want[i], places, diff)
		}
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t at the first NaN or infinity in data.
func RequireFinite(t *testing.T, name string, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s[%d] = %v, want finite", name, i, v)
		}
	}
}
