// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cpmech/gosl/chk"
)

// ProbeConfig selects one macro integration point whose RVE state is written to file
type ProbeConfig struct {
	Eid   int    `yaml:"eid"   env:"GOFE2_PROBE_EID"`   // macro element id; negative means no probe
	Ip    int    `yaml:"ip"    env:"GOFE2_PROBE_IP"`    // integration point index (0-based)
	File  string `yaml:"file"  env:"GOFE2_PROBE_FILE"`  // output file
	Debug bool   `yaml:"debug" env:"GOFE2_PROBE_DEBUG"` // also write on minor iterations
}

// RunConfig holds the configuration of a host run driving a set of macro points
type RunConfig struct {
	Rve        string      `yaml:"rve"        env:"GOFE2_RVE"`        // path to RVE template
	Periodic   *bool       `yaml:"periodic"   env:"GOFE2_PERIODIC"`   // overrides the template coupling if set
	Npoints    int         `yaml:"npoints"    env:"GOFE2_NPOINTS"`    // number of macro points
	Nincs      int         `yaml:"nincs"      env:"GOFE2_NINCS"`      // number of load increments
	Fmax       [][]float64 `yaml:"fmax"`                              // final deformation gradient
	Spread     float64     `yaml:"spread"     env:"GOFE2_SPREAD"`     // relative spread of deformation across points
	MaxCuts    int         `yaml:"maxcuts"    env:"GOFE2_MAXCUTS"`    // max number of increment cutbacks
	Workers    int         `yaml:"workers"    env:"GOFE2_WORKERS"`    // number of goroutines; 0 means one per point
	HmTol      float64     `yaml:"hmtol"      env:"GOFE2_HMTOL"`      // Hill-Mandel tolerance for warnings
	Dirout     string      `yaml:"dirout"     env:"GOFE2_DIROUT"`     // directory for output
	Checkpoint string      `yaml:"checkpoint" env:"GOFE2_CHECKPOINT"` // checkpoint database; empty means none
	Plot       bool        `yaml:"plot"       env:"GOFE2_PLOT"`       // plot stress path
	Verbose    bool        `yaml:"verbose"    env:"GOFE2_VERBOSE"`    // show messages
	Probe      ProbeConfig `yaml:"probe"`                             // probe
}

// DefaultRunConfig returns a configuration with default values
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Npoints: 4,
		Nincs:   5,
		Fmax:    [][]float64{{1.01, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Spread:  0.1,
		MaxCuts: 4,
		HmTol:   1e-2,
		Dirout:  "/tmp/gofe2",
		Probe:   ProbeConfig{Eid: -1},
	}
}

// LoadRunConfig loads configuration from YAML file (if fn is not empty) and then applies
// environment overrides (GOFE2_ prefix)
func LoadRunConfig(fn string) (o *RunConfig, err error) {
	o = DefaultRunConfig()
	if fn != "" {
		b, err := os.ReadFile(os.ExpandEnv(fn))
		if err != nil {
			return nil, chk.Err("cannot read configuration file %q:\n%v", fn, err)
		}
		err = yaml.Unmarshal(b, o)
		if err != nil {
			return nil, chk.Err("cannot parse configuration file %q:\n%v", fn, err)
		}
	}
	err = env.Parse(o)
	if err != nil {
		return nil, chk.Err("cannot parse environment variables:\n%v", err)
	}
	err = o.Validate()
	return
}

// Validate checks the configuration
func (o *RunConfig) Validate() error {
	if o.Npoints < 1 {
		return chk.Err("npoints must be positive. %d is incorrect", o.Npoints)
	}
	if o.Nincs < 1 {
		return chk.Err("nincs must be positive. %d is incorrect", o.Nincs)
	}
	if len(o.Fmax) != 3 {
		return chk.Err("fmax must be a 3x3 matrix")
	}
	for _, row := range o.Fmax {
		if len(row) != 3 {
			return chk.Err("fmax must be a 3x3 matrix")
		}
	}
	if o.Workers < 0 {
		return chk.Err("workers must be non-negative. %d is incorrect", o.Workers)
	}
	if o.HmTol <= 0 {
		return chk.Err("hmtol must be positive. %g is incorrect", o.HmTol)
	}
	return nil
}
