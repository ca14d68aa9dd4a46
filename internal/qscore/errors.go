package qscore

import "fmt"

// ConfigurationError reports an invalid run parameter. It is surfaced
// before any work starts and is not recoverable.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("qscore config: %s %s", e.Field, e.Reason)
}

// OcclusionSaturationError reports that the progressive strategy hit its
// round cap without collecting enough clean probes for one atom. This
// signals pathological local clustering; retrying with the same inputs
// reproduces the same failure, so the run is aborted.
type OcclusionSaturationError struct {
	Atom   int     // atom index in the full atom array
	Shell  int     // shell index
	Radius float64 // nominal shell radius
	Rounds int     // rounds attempted
	Found  int     // clean probes found in the final round
	Want   int     // n_probes_target
}

func (e *OcclusionSaturationError) Error() string {
	return fmt.Sprintf("qscore: probe allocation saturated for atom %d on shell %d (radius %.3f): %d/%d clean probes after %d rounds",
		e.Atom, e.Shell, e.Radius, e.Found, e.Want, e.Rounds)
}

// InsufficientProbesError reports that the precalculate strategy, in strict
// mode, left an atom with fewer than n_probes_min valid probes on a shell.
type InsufficientProbesError struct {
	Atom   int     // atom index in the full atom array
	Shell  int     // shell index
	Radius float64 // nominal shell radius
	Got    int
	Want   int // n_probes_min
}

func (e *InsufficientProbesError) Error() string {
	return fmt.Sprintf("qscore: atom %d has %d valid probes on shell %d (radius %.3f), need at least %d; consider raising n_probes_max",
		e.Atom, e.Got, e.Shell, e.Radius, e.Want)
}
