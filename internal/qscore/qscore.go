package qscore

import "fmt"

// Result is the outcome of one scoring run.
type Result struct {
	// Q holds one score per scored atom, in selection order (or atom
	// order when no selection was given). NaN means the correlation was
	// undefined for that atom.
	Q []float64

	// Debug carries the intermediate tensors when Params.Debug is set,
	// nil otherwise.
	Debug *DebugInfo
}

// DebugInfo exposes a run's intermediate tensors for diagnostic
// inspection. Tensor layout follows ProbeBatch indexing.
type DebugInfo struct {
	Probes    *ProbeBatch
	Densities []float64 // interpolated map values, NaN at invalid slots
	Reference ReferenceCurve
}

// Calculate scores every selected atom of the model against the density
// field. It builds the atom index, generates and occlusion-filters probes
// shell by shell across a bounded worker pool, interpolates the field at
// the surviving probes, and correlates them with the reference curve.
//
// Fatal conditions (*ConfigurationError, *OcclusionSaturationError,
// *InsufficientProbesError) abort the whole run; per-atom undefined
// correlations come back as NaN scores and are not errors.
func Calculate(field *DensityField, atoms []Vec3, params Params, opts ...Option) (*Result, error) {
	ro := runOptions{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&ro)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if field == nil || len(field.Data) == 0 {
		return nil, &ConfigurationError{Field: "density_field", Reason: "is empty"}
	}
	if len(atoms) == 0 {
		return nil, &ConfigurationError{Field: "atoms", Reason: "is empty"}
	}

	sel := params.Selection
	if sel == nil {
		sel = make([]int, len(atoms))
		for i := range sel {
			sel[i] = i
		}
	} else {
		for _, idx := range sel {
			if idx < 0 || idx >= len(atoms) {
				return nil, &ConfigurationError{Field: "selection", Reason: fmt.Sprintf("atom index %d out of range [0, %d)", idx, len(atoms))}
			}
		}
	}

	shells := params.ShellList()
	ro.observer.Logf("qscore: %d atoms (%d selected), %d shells, method=%s nproc=%d",
		len(atoms), len(sel), len(shells), params.Method, params.NProc)

	index := NewAtomIndex(atoms)
	strat := newShellStrategy(index, atoms, sel, params)

	batch, err := collectProbes(strat, shells, len(sel), params.NProbesMax, params.NProc)
	if err != nil {
		return nil, err
	}

	densities := interpolateBatch(field, batch)
	ref := BuildReferenceCurve(field, shells)
	q := scoreAtoms(batch, densities, ref)
	ro.observer.Logf("qscore: scored %d atoms", len(q))

	res := &Result{Q: q}
	if params.Debug {
		res.Debug = &DebugInfo{
			Probes:    batch,
			Densities: densities,
			Reference: ref,
		}
	}
	return res, nil
}
