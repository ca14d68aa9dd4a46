package qscore

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// referenceSigma is the fixed width of the idealised radial falloff.
const referenceSigma = 0.6

// ReferenceCurve is the expected density at each shell radius for a
// perfectly resolved atom, derived once per run from the map's global
// statistics. It peaks at radius zero and decays as a Gaussian.
type ReferenceCurve struct {
	Shells []float64
	Values []float64
}

// BuildReferenceCurve derives the curve from the field's mean, standard
// deviation and extrema. The amplitude spans from max(μ-σ, min) up to
// min(μ+10σ, max); each shell's value is baseline + amplitude *
// exp(-r²/(2·0.6²)).
func BuildReferenceCurve(f *DensityField, shells []float64) ReferenceCurve {
	mean, std := stat.MeanStdDev(f.Data, nil)
	maxD := math.Min(mean+std*10, floats.Max(f.Data))
	minD := math.Max(mean-std, floats.Min(f.Data))
	a := maxD - minD
	b := minD

	values := make([]float64, len(shells))
	for i, r := range shells {
		values[i] = b + a*math.Exp(-0.5*(r/referenceSigma)*(r/referenceSigma))
	}
	out := ReferenceCurve{
		Shells: make([]float64, len(shells)),
		Values: values,
	}
	copy(out.Shells, shells)
	return out
}
