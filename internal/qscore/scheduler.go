package qscore

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// collectProbes runs one strategy unit per shell across a bounded worker
// pool and assembles the full probe batch. Every shell writes into its own
// pre-indexed region of the batch, so the merged result is in shell order
// no matter how workers are scheduled, and a single-worker run produces
// byte-identical output. The first shell failure aborts the whole run.
func collectProbes(strat shellStrategy, shells []float64, nAtoms, nProbes, nproc int) (*ProbeBatch, error) {
	batch := newProbeBatch(len(shells), nAtoms, nProbes)
	if nproc < 1 {
		nproc = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(nproc)
	for i, radius := range shells {
		i, radius := i, radius
		g.Go(func() error {
			res, err := strat.Shell(i, radius)
			if err != nil {
				return err
			}
			off := i * batch.shellSize()
			copy(batch.XYZ[off:off+batch.shellSize()], res.xyz)
			copy(batch.Valid[off:off+batch.shellSize()], res.valid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}
