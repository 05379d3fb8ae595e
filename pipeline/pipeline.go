// Package pipeline loads the optimization-pipeline configuration: an
// ordered list of passes, optionally repeated to a fixpoint, read from a
// YAML file via the -O/--pipeline driver flag (§12.3).
package pipeline

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PassName is one of the closed set of optimization passes this module
// implements.
type PassName string

const (
	PassGlobalDCE           PassName = "dce"
	PassRedundantAssignment PassName = "redundant-assignment"
	PassLVN                 PassName = "lvn"
)

var validPasses = map[PassName]bool{
	PassGlobalDCE:           true,
	PassRedundantAssignment: true,
	PassLVN:                 true,
}

// Config is the parsed shape of a pipeline YAML file:
//
//	passes: [dce, lvn]
//	repeat: true
type Config struct {
	Passes []PassName `yaml:"passes"`
	Repeat bool       `yaml:"repeat"`
}

// Default is the pipeline run when no -O/--pipeline file is given: a
// single pass of every optimization, in an order where later passes can
// exploit earlier ones (LVN's canonicalization feeds redundant-assignment
// elimination, and DCE runs last to clean up whatever both leave dead).
func Default() Config {
	return Config{
		Passes: []PassName{PassLVN, PassRedundantAssignment, PassGlobalDCE},
		Repeat: false,
	}
}

// Load parses a pipeline YAML file's contents, rejecting any pass name
// outside the closed set as a fail-fast configuration error.
func Load(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("pipeline: invalid YAML: %w", err)
	}
	for _, p := range cfg.Passes {
		if !validPasses[p] {
			return Config{}, fmt.Errorf("pipeline: unknown pass %q", p)
		}
	}
	return cfg, nil
}
