// Package qscore implements per-atom density-correlation validation
// ("Q-score") for an atomic model against a sampled 3D density map.
//
// For every atom, sample points ("probes") are placed on a sequence of
// radial shells, probes that fall too close to a neighbouring atom are
// rejected, the map is interpolated at the surviving probes, and the
// per-atom score is the Pearson correlation between the interpolated
// densities and an idealised Gaussian radial falloff derived from the
// map's global statistics.
package qscore

import "math"

// Vec3 is a Cartesian position in map coordinates (ångströms).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// IsNaN reports whether any component of v is NaN. Probe slots that were
// never filled carry NaN coordinates as an explicit invalid sentinel.
func (v Vec3) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// nanVec3 is the sentinel stored in probe slots that hold no probe.
var nanVec3 = Vec3{math.NaN(), math.NaN(), math.NaN()}

// ProbeBatch is the full probe tensor for one run, conceptually shaped
// (NShells, NAtoms, NProbes) with a parallel validity mask. NAtoms counts
// scored atoms (the selection), not the whole model. Slots for rejected or
// never-generated probes have Valid false; never-generated slots also carry
// NaN coordinates.
type ProbeBatch struct {
	NShells int
	NAtoms  int
	NProbes int

	XYZ   []Vec3 // len NShells*NAtoms*NProbes
	Valid []bool // same indexing as XYZ
}

func newProbeBatch(nShells, nAtoms, nProbes int) *ProbeBatch {
	n := nShells * nAtoms * nProbes
	b := &ProbeBatch{
		NShells: nShells,
		NAtoms:  nAtoms,
		NProbes: nProbes,
		XYZ:     make([]Vec3, n),
		Valid:   make([]bool, n),
	}
	for i := range b.XYZ {
		b.XYZ[i] = nanVec3
	}
	return b
}

// Index returns the flat offset of (shell, atom, probe).
func (b *ProbeBatch) Index(shell, atom, probe int) int {
	return (shell*b.NAtoms+atom)*b.NProbes + probe
}

// ValidCount returns the number of valid probes for one (shell, atom) pair.
func (b *ProbeBatch) ValidCount(shell, atom int) int {
	base := b.Index(shell, atom, 0)
	n := 0
	for _, ok := range b.Valid[base : base+b.NProbes] {
		if ok {
			n++
		}
	}
	return n
}

// shellSize is the number of probe slots one shell occupies in the batch.
func (b *ProbeBatch) shellSize() int {
	return b.NAtoms * b.NProbes
}
