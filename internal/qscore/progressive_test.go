package qscore

import (
	"errors"
	"testing"
)

func progressiveFor(atoms []Vec3, p Params) *progressiveStrategy {
	sel := make([]int, len(atoms))
	for i := range sel {
		sel[i] = i
	}
	return &progressiveStrategy{
		index:  NewAtomIndex(atoms),
		atoms:  atoms,
		sel:    sel,
		params: p,
	}
}

func TestProgressive_IsolatedAtomKeepsExactlyTarget(t *testing.T) {
	atoms := []Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}
	p := DefaultParams()
	p.Method = MethodProgressive
	s := progressiveFor(atoms, p)

	res, err := s.Shell(0, 1.0)
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	for atom := 0; atom < len(atoms); atom++ {
		valid := 0
		base := atom * p.NProbesMax
		for i := 0; i < p.NProbesMax; i++ {
			if res.valid[base+i] {
				valid++
				if res.xyz[base+i].IsNaN() {
					t.Errorf("atom %d probe %d valid but NaN", atom, i)
				}
			} else if !res.xyz[base+i].IsNaN() {
				t.Errorf("atom %d probe %d invalid but has coordinates", atom, i)
			}
		}
		if valid != p.NProbesTarget {
			t.Errorf("atom %d: %d valid probes, want exactly %d", atom, valid, p.NProbesTarget)
		}
	}
}

func TestProgressive_CloseNeighboursRejectProbes(t *testing.T) {
	// Two atoms 0.5 apart, with shell radius 1.0 above the separation:
	// each atom's opposite-facing probes land inside the neighbour's
	// occlusion radius, so more candidate rounds are needed and rejection
	// actually happens. The strategy must still find the target count.
	atoms := []Vec3{{X: 0, Y: 0, Z: 0}, {X: 0.5, Y: 0, Z: 0}}
	p := DefaultParams()
	p.Method = MethodProgressive
	s := progressiveFor(atoms, p)

	rejected := 0
	for _, pt := range spherePoints(atoms[0], 1.0, p.NProbesTarget) {
		if s.occluded(pt, 1.0*p.RTol, 0) {
			rejected++
		}
	}
	if rejected == 0 {
		t.Fatal("fixture expected to reject at least one first-round probe")
	}

	res, err := s.Shell(0, 1.0)
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	for atom := range atoms {
		valid := 0
		for i := 0; i < p.NProbesMax; i++ {
			if res.valid[atom*p.NProbesMax+i] {
				valid++
			}
		}
		if valid != p.NProbesTarget {
			t.Errorf("atom %d: %d valid probes, want %d", atom, valid, p.NProbesTarget)
		}
	}
}

func TestProgressive_SaturationIsFatal(t *testing.T) {
	// The caged atom's shell is covered: every point on it is within the
	// occlusion radius of some cage atom, so no number of rounds can
	// ever succeed.
	atoms := cagedAtomFixture()
	p := DefaultParams()
	p.Method = MethodProgressive
	s := progressiveFor(atoms, p)

	_, err := s.Shell(3, cageRadius)
	if err == nil {
		t.Fatal("expected saturation error")
	}
	var satErr *OcclusionSaturationError
	if !errors.As(err, &satErr) {
		t.Fatalf("expected *OcclusionSaturationError, got %T: %v", err, err)
	}
	if satErr.Atom != 0 {
		t.Errorf("Atom = %d, want 0", satErr.Atom)
	}
	if satErr.Found != 0 {
		t.Errorf("Found = %d, want 0", satErr.Found)
	}
	if satErr.Shell != 3 {
		t.Errorf("Shell = %d, want 3", satErr.Shell)
	}
	if satErr.Rounds != maxProbeRounds {
		t.Errorf("Rounds = %d, want %d", satErr.Rounds, maxProbeRounds)
	}
	if satErr.Want != p.NProbesTarget {
		t.Errorf("Want = %d, want %d", satErr.Want, p.NProbesTarget)
	}
}

func TestProgressive_OwnerAtomZeroNotSpeciallyTreated(t *testing.T) {
	// Atom 0 must be usable as an explicit occlusion owner: its own
	// presence under a probe is not a rejection.
	atoms := []Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 10}}
	s := progressiveFor(atoms, DefaultParams())

	pt := Vec3{X: 0.2, Y: 0, Z: 0}
	if s.occluded(pt, 0.9, 0) {
		t.Error("probe near atom 0 rejected with atom 0 as owner")
	}
	if !s.occluded(pt, 0.9, 1) {
		t.Error("probe near atom 0 accepted with atom 1 as owner")
	}
}
