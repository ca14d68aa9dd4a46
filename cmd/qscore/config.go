package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/qscore/internal/qscore"
)

// maxConfigFileSize bounds run-config files; anything larger is a mistake.
const maxConfigFileSize = 1 << 20

// runConfig is an optional YAML run-configuration file. All fields are
// pointers so that omitted keys leave the engine defaults (or flag
// overrides) untouched; partial configs are safe.
type runConfig struct {
	NProbesTarget    *int      `yaml:"n_probes_target,omitempty"`
	NProbesMax       *int      `yaml:"n_probes_max,omitempty"`
	NProbesMin       *int      `yaml:"n_probes_min,omitempty"`
	ShellRadiusStart *float64  `yaml:"shell_radius_start,omitempty"`
	ShellRadiusStop  *float64  `yaml:"shell_radius_stop,omitempty"`
	ShellRadiusNum   *int      `yaml:"shell_radius_num,omitempty"`
	Shells           []float64 `yaml:"shells,omitempty"`
	RTol             *float64  `yaml:"rtol,omitempty"`
	Method           *string   `yaml:"probe_allocation_method,omitempty"`
	NProc            *int      `yaml:"nproc,omitempty"`
	Strict           *bool     `yaml:"strict,omitempty"`
	Debug            *bool     `yaml:"debug,omitempty"`
}

// loadRunConfig reads and validates a YAML run-config file.
func loadRunConfig(path string) (*runConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s is %d bytes, over the %d byte limit", cleanPath, info.Size(), maxConfigFileSize)
	}
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg runConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", cleanPath, err)
	}
	return &cfg, nil
}

// apply copies the set fields onto the engine parameters.
func (c *runConfig) apply(p *qscore.Params) {
	if c.NProbesTarget != nil {
		p.NProbesTarget = *c.NProbesTarget
	}
	if c.NProbesMax != nil {
		p.NProbesMax = *c.NProbesMax
	}
	if c.NProbesMin != nil {
		p.NProbesMin = *c.NProbesMin
	}
	if c.ShellRadiusStart != nil {
		p.ShellRadiusStart = *c.ShellRadiusStart
	}
	if c.ShellRadiusStop != nil {
		p.ShellRadiusStop = *c.ShellRadiusStop
	}
	if c.ShellRadiusNum != nil {
		p.ShellRadiusNum = *c.ShellRadiusNum
	}
	if len(c.Shells) > 0 {
		p.Shells = append([]float64(nil), c.Shells...)
	}
	if c.RTol != nil {
		p.RTol = *c.RTol
	}
	if c.Method != nil {
		p.Method = *c.Method
	}
	if c.NProc != nil {
		p.NProc = *c.NProc
	}
	if c.Strict != nil {
		p.Strict = *c.Strict
	}
	if c.Debug != nil {
		p.Debug = *c.Debug
	}
}
