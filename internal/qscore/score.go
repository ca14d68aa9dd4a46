package qscore

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// scoreAtoms computes one Pearson correlation per scored atom between the
// interpolated densities and the reference curve, restricted to valid
// probes across all shells. Atoms with fewer than two valid samples, or
// with zero variance in either vector, score NaN; that outcome is local
// and never aborts the run.
func scoreAtoms(batch *ProbeBatch, densities []float64, ref ReferenceCurve) []float64 {
	q := make([]float64, batch.NAtoms)
	d := make([]float64, 0, batch.NShells*batch.NProbes)
	g := make([]float64, 0, batch.NShells*batch.NProbes)

	for atom := 0; atom < batch.NAtoms; atom++ {
		d, g = d[:0], g[:0]
		for shell := 0; shell < batch.NShells; shell++ {
			base := batch.Index(shell, atom, 0)
			for probe := 0; probe < batch.NProbes; probe++ {
				if !batch.Valid[base+probe] {
					continue
				}
				d = append(d, densities[base+probe])
				g = append(g, ref.Values[shell])
			}
		}
		q[atom] = pearson(d, g)
	}
	return q
}

// pearson returns the correlation coefficient of x and y, or NaN when it
// is undefined (fewer than two samples, or zero variance in either input).
func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}
