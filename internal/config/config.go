// Package config loads AnalyzerConfig, the small struct controlling
// which semantic phases run and how strict they are (spec §6.1).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalyzerConfig controls semantic-phase behavior. Its zero value runs
// every phase at default strictness, so loading from YAML is a
// convenience, not a requirement of calling analyze.
type AnalyzerConfig struct {
	// StrictOwnership turns ownership diagnostics into fatal errors
	// (can_emit_code = false). When false they are still reported in
	// CompilerState.Errors but leave can_emit_code alone. Defaults to
	// true even at the zero value since spec §8 property 7 treats
	// ownership balance as a hard invariant.
	StrictOwnership *bool `yaml:"strict_ownership"`

	// SkipPhases names semantic phases to omit entirely, by the name
	// each phase reports in CompilerState.Timings (e.g. "ownership").
	// Mainly useful for isolating a single phase in tests.
	SkipPhases []string `yaml:"skip_phases"`

	// EntryPoint names the Bnd that must exist and be callable with no
	// arguments for InvalidEntryPoint to stay silent. Empty means no
	// entry point is required.
	EntryPoint string `yaml:"entry_point"`
}

// StrictOwnershipEnabled reports the effective value, defaulting to
// true when unset.
func (c AnalyzerConfig) StrictOwnershipEnabled() bool {
	if c.StrictOwnership == nil {
		return true
	}
	return *c.StrictOwnership
}

// SkipsPhase reports whether phase is listed in SkipPhases.
func (c AnalyzerConfig) SkipsPhase(phase string) bool {
	for _, p := range c.SkipPhases {
		if p == phase {
			return true
		}
	}
	return false
}

// Load reads an AnalyzerConfig from a YAML file.
func Load(path string) (*AnalyzerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg AnalyzerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}
