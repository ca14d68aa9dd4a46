package qscore

// precalculateStrategy allocates n_probes_max probes for every atom in one
// pass and rejects occluded probes with a single 2-nearest-neighbour query
// each: a probe survives iff its nearest atom is its owner and the
// second-nearest atom sits outside the occlusion radius. Probe placement is
// never regenerated, so results near clustered atoms differ slightly from
// the progressive strategy.
type precalculateStrategy struct {
	index  *AtomIndex
	atoms  []Vec3
	sel    []int
	params Params
}

func (s *precalculateStrategy) Shell(shellIdx int, radius float64) (shellResult, error) {
	res := newShellResult(shellIdx, len(s.sel), s.params.NProbesMax)
	occlusionRadius := radius * s.params.RTol

	for ai, atomIdx := range s.sel {
		base := ai * s.params.NProbesMax
		valid := 0
		for pi, pt := range spherePoints(s.atoms[atomIdx], radius, s.params.NProbesMax) {
			res.xyz[base+pi] = pt
			nbr, dist := s.index.Nearest2(pt)
			if nbr[0] == atomIdx && !(dist[1] < occlusionRadius) {
				res.valid[base+pi] = true
				valid++
			}
		}
		if s.params.Strict && valid < s.params.NProbesMin {
			return shellResult{}, &InsufficientProbesError{
				Atom:   atomIdx,
				Shell:  shellIdx,
				Radius: radius,
				Got:    valid,
				Want:   s.params.NProbesMin,
			}
		}
	}
	return res, nil
}
