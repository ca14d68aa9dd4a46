package qscore

// maxProbeRounds caps the progressive strategy's regeneration loop. The
// candidate count grows by two per round, so hitting the cap means even
// n_probes_target + 2*(maxProbeRounds-1) candidates could not produce
// enough clean probes around one atom.
const maxProbeRounds = 50

// progressiveStrategy collects probes the way the original mapq does: per
// atom, propose candidate points on the shell, reject any with a foreign
// atom inside the occlusion radius, and regenerate with two extra
// candidates until n_probes_target clean probes are found.
type progressiveStrategy struct {
	index  *AtomIndex
	atoms  []Vec3
	sel    []int
	params Params
}

func (s *progressiveStrategy) Shell(shellIdx int, radius float64) (shellResult, error) {
	res := newShellResult(shellIdx, len(s.sel), s.params.NProbesMax)
	occlusionRadius := radius * s.params.RTol

	for ai, atomIdx := range s.sel {
		center := s.atoms[atomIdx]
		base := ai * s.params.NProbesMax

		kept, rounds := 0, 0
		for round := 0; round < maxProbeRounds; round++ {
			rounds = round + 1
			kept = 0
			candidates := spherePoints(center, radius, s.params.NProbesTarget+2*round)
			for _, pt := range candidates {
				if s.occluded(pt, occlusionRadius, atomIdx) {
					continue
				}
				res.xyz[base+kept] = pt
				res.valid[base+kept] = true
				kept++
				if kept == s.params.NProbesTarget {
					break
				}
			}
			if kept == s.params.NProbesTarget {
				break
			}
		}
		if kept < s.params.NProbesTarget {
			return shellResult{}, &OcclusionSaturationError{
				Atom:   atomIdx,
				Shell:  shellIdx,
				Radius: radius,
				Rounds: rounds,
				Found:  kept,
				Want:   s.params.NProbesTarget,
			}
		}
		// Slots past kept retain their NaN/invalid padding.
	}
	return res, nil
}

// occluded reports whether any atom other than owner lies within r of pt.
// The owner index is always explicit; atom 0 is as valid an owner as any
// other.
func (s *progressiveStrategy) occluded(pt Vec3, r float64, owner int) bool {
	for _, idx := range s.index.WithinRadius(pt, r) {
		if idx != owner {
			return true
		}
	}
	return false
}
