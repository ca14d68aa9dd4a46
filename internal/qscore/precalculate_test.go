package qscore

import (
	"errors"
	"testing"
)

func precalculateFor(atoms []Vec3, p Params) *precalculateStrategy {
	sel := make([]int, len(atoms))
	for i := range sel {
		sel[i] = i
	}
	return &precalculateStrategy{
		index:  NewAtomIndex(atoms),
		atoms:  atoms,
		sel:    sel,
		params: p,
	}
}

func shellValidCount(res shellResult, atom, nProbes int) int {
	n := 0
	for i := 0; i < nProbes; i++ {
		if res.valid[atom*nProbes+i] {
			n++
		}
	}
	return n
}

func TestPrecalculate_IsolatedAtomsKeepAllProbes(t *testing.T) {
	atoms := []Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}
	p := DefaultParams()
	s := precalculateFor(atoms, p)

	res, err := s.Shell(0, 1.0)
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	for atom := range atoms {
		if got := shellValidCount(res, atom, p.NProbesMax); got != p.NProbesMax {
			t.Errorf("atom %d: %d valid probes, want %d (no spurious rejection in isolation)",
				atom, got, p.NProbesMax)
		}
	}
}

func TestPrecalculate_CloseNeighboursRejectMoreProbes(t *testing.T) {
	p := DefaultParams()

	isolated := precalculateFor([]Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}, p)
	resIso, err := isolated.Shell(0, 1.0)
	if err != nil {
		t.Fatalf("isolated Shell: %v", err)
	}

	crowded := precalculateFor([]Vec3{{X: 0, Y: 0, Z: 0}, {X: 0.5, Y: 0, Z: 0}}, p)
	resCrowd, err := crowded.Shell(0, 1.0)
	if err != nil {
		t.Fatalf("crowded Shell: %v", err)
	}

	for atom := 0; atom < 2; atom++ {
		iso := shellValidCount(resIso, atom, p.NProbesMax)
		crowd := shellValidCount(resCrowd, atom, p.NProbesMax)
		if crowd >= iso {
			t.Errorf("atom %d: crowded valid count %d not below isolated %d", atom, crowd, iso)
		}
		if crowd < 0 || crowd > p.NProbesMax {
			t.Errorf("atom %d: valid count %d outside [0, %d]", atom, crowd, p.NProbesMax)
		}
	}
}

func TestPrecalculate_StrictFailsOnStarvedAtom(t *testing.T) {
	// Every probe on the caged atom's shell has a cage atom closer than
	// the caged atom itself, so no probe can survive.
	atoms := cagedAtomFixture()
	p := DefaultParams()
	p.Strict = true
	s := precalculateFor(atoms, p)

	_, err := s.Shell(2, cageRadius)
	if err == nil {
		t.Fatal("expected strict-mode error")
	}
	var insErr *InsufficientProbesError
	if !errors.As(err, &insErr) {
		t.Fatalf("expected *InsufficientProbesError, got %T: %v", err, err)
	}
	if insErr.Atom != 0 {
		t.Errorf("Atom = %d, want 0 (the caged atom is processed first)", insErr.Atom)
	}
	if insErr.Shell != 2 {
		t.Errorf("Shell = %d, want 2", insErr.Shell)
	}
	if insErr.Want != p.NProbesMin {
		t.Errorf("Want = %d, want %d", insErr.Want, p.NProbesMin)
	}
	if insErr.Got >= p.NProbesMin {
		t.Errorf("Got = %d, expected below %d", insErr.Got, p.NProbesMin)
	}
}

func TestPrecalculate_NonStrictToleratesStarvedAtom(t *testing.T) {
	atoms := cagedAtomFixture()
	p := DefaultParams()
	s := precalculateFor(atoms, p)

	res, err := s.Shell(0, cageRadius)
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	// The caged atom's slots still carry probe coordinates, just marked
	// invalid.
	for i := 0; i < p.NProbesMax; i++ {
		if res.valid[i] {
			t.Errorf("caged atom probe %d unexpectedly valid", i)
		}
		if res.xyz[i].IsNaN() {
			t.Errorf("caged atom probe %d missing coordinates", i)
		}
	}
}
