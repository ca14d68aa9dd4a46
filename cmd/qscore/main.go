// Command qscore scores an atomic model against a density map and reports
// the per-atom Q-score.
//
// The model is a CSV of atom coordinates, the map an MRC/CCP4 file (or a
// raw float32 volume with explicit dimensions). Results go to stdout as
// JSON and can optionally be recorded in a local SQLite run database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/qscore/internal/mapio"
	"github.com/banshee-data/qscore/internal/model"
	"github.com/banshee-data/qscore/internal/qscore"
	"github.com/banshee-data/qscore/internal/store"
)

func main() {
	var (
		atomsPath  = flag.String("atoms", "", "atom coordinate CSV file (required)")
		mapPath    = flag.String("map", "", "MRC/CCP4 density map")
		rawPath    = flag.String("raw", "", "raw float32 volume (requires -dims and -voxel)")
		dims       = flag.String("dims", "", "raw volume dimensions as nx,ny,nz")
		voxel      = flag.String("voxel", "", "raw volume voxel size as x,y,z")
		origin     = flag.String("origin", "0,0,0", "raw volume coordinate origin as x,y,z")
		configPath = flag.String("config", "", "optional YAML run configuration")
		method     = flag.String("method", "", "probe allocation method: progressive or precalculate")
		shells     = flag.String("shells", "", "explicit shell radii as a comma-separated list")
		nproc      = flag.Int("nproc", 0, "worker count (0 = one per CPU)")
		strict     = flag.Bool("strict", false, "fail when any atom has too few valid probes (precalculate)")
		debug      = flag.Bool("debug", false, "include intermediate tensors in the output")
		selectSpec = flag.String("select", "", "atom indices to score, e.g. 0-10,25 (default all)")
		dbPath     = flag.String("db", "", "record the run in this SQLite database")
		verbose    = flag.Bool("verbose", false, "log run progress to stderr")
	)
	flag.Parse()

	if err := run(*atomsPath, *mapPath, *rawPath, *dims, *voxel, *origin, *configPath,
		*method, *shells, *nproc, *strict, *debug, *selectSpec, *dbPath, *verbose); err != nil {
		log.Fatalf("qscore: %v", err)
	}
}

func run(atomsPath, mapPath, rawPath, dims, voxel, origin, configPath,
	method, shells string, nproc int, strict, debug bool, selectSpec, dbPath string, verbose bool) error {

	if atomsPath == "" {
		return fmt.Errorf("-atoms is required")
	}
	if (mapPath == "") == (rawPath == "") {
		return fmt.Errorf("provide exactly one of -map or -raw")
	}

	params := qscore.DefaultParams()
	if configPath != "" {
		cfg, err := loadRunConfig(configPath)
		if err != nil {
			return err
		}
		cfg.apply(&params)
	}
	// Flags override the config file.
	if method != "" {
		params.Method = method
	}
	if shells != "" {
		radii, err := parseFloatList(shells)
		if err != nil {
			return fmt.Errorf("invalid -shells: %w", err)
		}
		params.Shells = radii
	}
	if nproc != 0 {
		params.NProc = nproc
	}
	if strict {
		params.Strict = true
	}
	if debug {
		params.Debug = true
	}
	if selectSpec != "" {
		sel, err := parseSelection(selectSpec)
		if err != nil {
			return fmt.Errorf("invalid -select: %w", err)
		}
		params.Selection = sel
	}

	records, err := model.ReadAtomsFile(atomsPath)
	if err != nil {
		return err
	}
	atoms := model.Positions(records)

	var field *qscore.DensityField
	inputPath := mapPath
	if mapPath != "" {
		field, err = mapio.ReadMRCFile(mapPath)
	} else {
		field, err = loadRawVolume(rawPath, dims, voxel, origin)
		inputPath = rawPath
	}
	if err != nil {
		return err
	}

	var opts []qscore.Option
	if verbose {
		opts = append(opts, qscore.WithObserver(qscore.ObserverFunc(log.Printf)))
	}

	started := time.Now()
	result, err := qscore.Calculate(field, atoms, params, opts...)
	if err != nil {
		return err
	}
	completed := time.Now()

	out := buildOutput(params, result)
	if dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()

		paramsJSON, err := json.Marshal(paramsSummary(params))
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		runID, err := s.RecordRun(store.Run{
			AtomsPath:   atomsPath,
			MapPath:     inputPath,
			Method:      params.Method,
			Params:      paramsJSON,
			StartedAt:   started,
			CompletedAt: completed,
		}, result.Q)
		if err != nil {
			return err
		}
		out.RunID = runID
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// output is the JSON document written to stdout. Undefined scores encode
// as null.
type output struct {
	RunID  string     `json:"run_id,omitempty"`
	Method string     `json:"method"`
	NAtoms int        `json:"n_atoms"`
	MeanQ  *float64   `json:"mean_q"`
	Scores []*float64 `json:"scores"`
	Debug  *debugOut  `json:"debug,omitempty"`
}

type debugOut struct {
	Shells      []float64 `json:"shells"`
	Reference   []float64 `json:"reference"`
	ValidCounts [][]int   `json:"valid_counts"` // [shell][atom]
}

func buildOutput(params qscore.Params, result *qscore.Result) output {
	out := output{
		Method: params.Method,
		NAtoms: len(result.Q),
		Scores: make([]*float64, len(result.Q)),
		MeanQ:  meanDefined(result.Q),
	}
	for i, q := range result.Q {
		if !math.IsNaN(q) {
			v := q
			out.Scores[i] = &v
		}
	}
	if result.Debug != nil {
		d := &debugOut{
			Shells:    result.Debug.Reference.Shells,
			Reference: result.Debug.Reference.Values,
		}
		batch := result.Debug.Probes
		d.ValidCounts = make([][]int, batch.NShells)
		for shell := range d.ValidCounts {
			counts := make([]int, batch.NAtoms)
			for atom := range counts {
				counts[atom] = batch.ValidCount(shell, atom)
			}
			d.ValidCounts[shell] = counts
		}
		out.Debug = d
	}
	return out
}

func meanDefined(scores []float64) *float64 {
	sum, n := 0.0, 0
	for _, q := range scores {
		if !math.IsNaN(q) {
			sum += q
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// paramsSummary is the stable JSON shape recorded with each run.
func paramsSummary(p qscore.Params) map[string]any {
	return map[string]any{
		"n_probes_target":         p.NProbesTarget,
		"n_probes_max":            p.NProbesMax,
		"n_probes_min":            p.NProbesMin,
		"shells":                  p.ShellList(),
		"rtol":                    p.RTol,
		"probe_allocation_method": p.Method,
		"strict":                  p.Strict,
	}
}

func loadRawVolume(path, dims, voxel, origin string) (*qscore.DensityField, error) {
	if dims == "" || voxel == "" {
		return nil, fmt.Errorf("-raw requires -dims and -voxel")
	}
	n, err := parseIntTriple(dims)
	if err != nil {
		return nil, fmt.Errorf("invalid -dims: %w", err)
	}
	vs, err := parseVecTriple(voxel)
	if err != nil {
		return nil, fmt.Errorf("invalid -voxel: %w", err)
	}
	org, err := parseVecTriple(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid -origin: %w", err)
	}
	return mapio.ReadRawFile(path, n[0], n[1], n[2], vs, org)
}

// parseFloatList parses a comma-separated list of floats.
func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseIntTriple parses "a,b,c" into three ints.
func parseIntTriple(s string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("want three comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseVecTriple parses "x,y,z" into a vector.
func parseVecTriple(s string) (qscore.Vec3, error) {
	vals, err := parseFloatList(s)
	if err != nil {
		return qscore.Vec3{}, err
	}
	if len(vals) != 3 {
		return qscore.Vec3{}, fmt.Errorf("want three comma-separated values, got %d", len(vals))
	}
	return qscore.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// parseSelection parses an atom selection like "0-10,25,40-42" into a
// sorted-by-appearance index list.
func parseSelection(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid range start '%s': %w", lo, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid range end '%s': %w", hi, err)
			}
			if end < start {
				return nil, fmt.Errorf("range '%s' runs backwards", part)
			}
			for i := start; i <= end; i++ {
				out = append(out, i)
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index '%s': %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}
