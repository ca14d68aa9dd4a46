package qscore

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func referenceTestField(t *testing.T) *DensityField {
	t.Helper()
	data := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	f, err := NewDensityField(data, 2, 2, 2, Vec3{X: 1, Y: 1, Z: 1}, Vec3{})
	if err != nil {
		t.Fatalf("NewDensityField: %v", err)
	}
	return f
}

func TestBuildReferenceCurve_PeakAtZero(t *testing.T) {
	f := referenceTestField(t)
	curve := BuildReferenceCurve(f, []float64{0, 0.5, 1.0})

	mean, std := stat.MeanStdDev(f.Data, nil)
	maxD := math.Min(mean+10*std, floats.Max(f.Data))
	minD := math.Max(mean-std, floats.Min(f.Data))
	wantPeak := minD + (maxD - minD) // B + A at radius zero

	if math.Abs(curve.Values[0]-wantPeak) > 1e-12 {
		t.Errorf("value at radius 0 = %f, want %f", curve.Values[0], wantPeak)
	}
}

func TestBuildReferenceCurve_StrictlyDecreasing(t *testing.T) {
	f := referenceTestField(t)
	shells := floats.Span(make([]float64, 20), 0.1, 2.0)
	curve := BuildReferenceCurve(f, shells)

	for i := 1; i < len(curve.Values); i++ {
		if curve.Values[i] >= curve.Values[i-1] {
			t.Errorf("curve not strictly decreasing at shell %d: %f >= %f",
				i, curve.Values[i], curve.Values[i-1])
		}
	}
}

func TestBuildReferenceCurve_ClampsToFieldExtrema(t *testing.T) {
	// A spread-out field makes mean+10*std exceed the max, so the
	// amplitude must clamp at the observed extrema.
	data := []float64{-100, 100, 0, 0, 0, 0, 0, 0}
	f, err := NewDensityField(data, 2, 2, 2, Vec3{X: 1, Y: 1, Z: 1}, Vec3{})
	if err != nil {
		t.Fatalf("NewDensityField: %v", err)
	}
	curve := BuildReferenceCurve(f, []float64{0})
	if curve.Values[0] > 100 {
		t.Errorf("peak %f exceeds field maximum", curve.Values[0])
	}
}

func TestBuildReferenceCurve_DoesNotAliasShells(t *testing.T) {
	f := referenceTestField(t)
	shells := []float64{0.5, 1.0}
	curve := BuildReferenceCurve(f, shells)
	shells[0] = 99
	if curve.Shells[0] != 0.5 {
		t.Error("curve aliases the caller's shell slice")
	}
}
