package qscore

// shellResult is one shell's slice of the probe batch: probe positions and
// validity for every scored atom, flattened (atom-major).
type shellResult struct {
	shell int
	xyz   []Vec3 // len nAtoms*nProbesMax
	valid []bool
}

func newShellResult(shell, nAtoms, nProbes int) shellResult {
	r := shellResult{
		shell: shell,
		xyz:   make([]Vec3, nAtoms*nProbes),
		valid: make([]bool, nAtoms*nProbes),
	}
	for i := range r.xyz {
		r.xyz[i] = nanVec3
	}
	return r
}

// shellStrategy generates and occlusion-filters probes for a single shell.
// The two implementations share this contract and are selected by
// Params.Method; both are safe for concurrent Shell calls on distinct
// shells.
type shellStrategy interface {
	Shell(shellIdx int, radius float64) (shellResult, error)
}

// newShellStrategy builds the configured strategy over a shared atom index.
// sel lists the atoms to score by index into atoms; occlusion checks always
// consider the full atom set.
func newShellStrategy(index *AtomIndex, atoms []Vec3, sel []int, p Params) shellStrategy {
	if p.Method == MethodProgressive {
		return &progressiveStrategy{index: index, atoms: atoms, sel: sel, params: p}
	}
	return &precalculateStrategy{index: index, atoms: atoms, sel: sel, params: p}
}
