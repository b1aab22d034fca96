package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
)

// RequireSliceNearlyEqual32 fails t if got and want differ in length or if
// any element pair is not equal within eps, absolute or relative to the
// larger magnitude (see core.NearlyEqual). eps <= 0 uses core's default.
func RequireSliceNearlyEqual32(t *testing.T, got, want []float32, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !core.NearlyEqual(float64(got[i]), float64(want[i]), eps) {
			diff := math.Abs(float64(got[i]) - float64(want[i]))
			t.Fatalf("index %d: got %v, want %v (diff %v, eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite32 fails t if any element is NaN or Inf.
func RequireFinite32(t *testing.T, data []float32) {
	t.Helper()
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff32 returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff32(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(float64(a[i]) - float64(b[i]))
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}
