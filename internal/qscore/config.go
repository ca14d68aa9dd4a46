package qscore

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Probe allocation methods.
const (
	// MethodProgressive proposes probes iteratively per atom, regenerating
	// with more candidates until enough unoccluded probes are found. It
	// reproduces the original mapq allocation exactly.
	MethodProgressive = "progressive"
	// MethodPrecalculate allocates the maximum probe count for every atom
	// in one pass and rejects occluded probes once. Faster, with slightly
	// different results near clustered atoms.
	MethodPrecalculate = "precalculate"
)

// Default parameter values, matching the original mapq defaults.
const (
	DefaultNProbesTarget    = 8
	DefaultNProbesMax       = 16
	DefaultNProbesMin       = 4
	DefaultShellRadiusStart = 0.1
	DefaultShellRadiusStop  = 2.0
	DefaultShellRadiusNum   = 20
	DefaultRTol             = 0.9
)

// Params configures one scoring run.
type Params struct {
	NProbesTarget int // probes wanted per atom per shell (progressive)
	NProbesMax    int // probe slots allocated per atom per shell
	NProbesMin    int // strict-mode lower bound on valid probes

	// Shell radii come either from Shells (explicit, ascending) or, when
	// Shells is empty, from an even spread over [Start, Stop] with Num
	// points.
	ShellRadiusStart float64
	ShellRadiusStop  float64
	ShellRadiusNum   int
	Shells           []float64

	// RTol scales a shell's nominal radius down to the occlusion-check
	// radius. Must be in (0, 1].
	RTol float64

	// Method selects the probe allocation strategy.
	Method string

	// NProc bounds the worker pool. Zero or negative means one worker per
	// CPU.
	NProc int

	// Strict makes the precalculate method fail when any atom has fewer
	// than NProbesMin valid probes in any shell.
	Strict bool

	// Debug includes the intermediate tensors in the result.
	Debug bool

	// Selection restricts scoring to these atom indices, in order. Nil
	// means all atoms. Unselected atoms still occlude probes.
	Selection []int
}

// DefaultParams returns the standard run configuration.
func DefaultParams() Params {
	return Params{
		NProbesTarget:    DefaultNProbesTarget,
		NProbesMax:       DefaultNProbesMax,
		NProbesMin:       DefaultNProbesMin,
		ShellRadiusStart: DefaultShellRadiusStart,
		ShellRadiusStop:  DefaultShellRadiusStop,
		ShellRadiusNum:   DefaultShellRadiusNum,
		RTol:             DefaultRTol,
		Method:           MethodPrecalculate,
	}
}

// Validate checks the parameters, returning a *ConfigurationError on the
// first violation.
func (p Params) Validate() error {
	if p.NProbesTarget < 2 {
		return &ConfigurationError{Field: "n_probes_target", Reason: "must be at least 2"}
	}
	if p.NProbesMax < p.NProbesTarget {
		return &ConfigurationError{Field: "n_probes_max", Reason: "must be >= n_probes_target"}
	}
	if p.NProbesMin < 0 || p.NProbesMin > p.NProbesTarget {
		return &ConfigurationError{Field: "n_probes_min", Reason: "must be in [0, n_probes_target]"}
	}
	if p.RTol <= 0 || p.RTol > 1 {
		return &ConfigurationError{Field: "rtol", Reason: "must be in (0, 1]"}
	}
	switch p.Method {
	case MethodProgressive, MethodPrecalculate:
	default:
		return &ConfigurationError{Field: "probe_allocation_method", Reason: "must be progressive or precalculate"}
	}
	if len(p.Shells) > 0 {
		if p.Shells[0] <= 0 {
			return &ConfigurationError{Field: "shells", Reason: "radii must be positive"}
		}
		if !sort.Float64sAreSorted(p.Shells) {
			return &ConfigurationError{Field: "shells", Reason: "radii must be ascending"}
		}
	} else {
		if p.ShellRadiusStart <= 0 {
			return &ConfigurationError{Field: "shell_radius_start", Reason: "must be positive"}
		}
		if p.ShellRadiusStop <= p.ShellRadiusStart {
			return &ConfigurationError{Field: "shell_radius_stop", Reason: "must be greater than shell_radius_start"}
		}
		if p.ShellRadiusNum < 2 {
			return &ConfigurationError{Field: "shell_radius_num", Reason: "must be at least 2"}
		}
	}
	return nil
}

// ShellList returns the shell radii for this run: Shells verbatim when
// given, otherwise ShellRadiusNum radii evenly spread over
// [ShellRadiusStart, ShellRadiusStop] inclusive.
func (p Params) ShellList() []float64 {
	if len(p.Shells) > 0 {
		out := make([]float64, len(p.Shells))
		copy(out, p.Shells)
		return out
	}
	return floats.Span(make([]float64, p.ShellRadiusNum), p.ShellRadiusStart, p.ShellRadiusStop)
}
