// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"strings"
	"testing"
)

func TestLoadConfigYAMLOverridesDefaults(t *testing.T) {
	yamlDoc := `
n_dims: 4
nlive: 200
num_workers: 3
base_dir: /tmp/run1
file_root: test
`
	cfg, err := LoadConfigYAML(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatalf("LoadConfigYAML returned error: %v", err)
	}
	if cfg.NDims != 4 || cfg.NLive != 200 || cfg.NumWorkers != 3 {
		t.Errorf("LoadConfigYAML did not apply overrides: %+v", cfg)
	}
	// Fields not present in the document keep DefaultConfig's values.
	if cfg.PrecisionCriterion != 1e-3 {
		t.Errorf("PrecisionCriterion = %v, want default 1e-3", cfg.PrecisionCriterion)
	}
}

func TestConfigValidateRejectsTooManyWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NDims = 2
	cfg.NLive = 5
	cfg.NumWorkers = 5 // must be < nlive
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted num_workers >= nlive")
	}
}

func TestConfigValidateRejectsZeroWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NDims = 2
	cfg.NLive = 10
	cfg.NumWorkers = 0 // would spin forever: no worker ever produces a baby
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted num_workers == 0")
	}
}

func TestConfigValidateRequiresBaseDirForOutputs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NDims = 2
	cfg.NLive = 10
	cfg.NumWorkers = 1
	cfg.WriteResume = true
	cfg.BaseDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted write_resume without base_dir")
	}
}

func TestConfigValidateAcceptsReasonableConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NDims = 3
	cfg.NLive = 50
	cfg.NumWorkers = 4
	cfg.WriteResume = false
	cfg.WriteStats = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate rejected a reasonable config: %v", err)
	}
}

func TestStackCapacityFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NLive = 25
	cfg.ChainLength = 0 // must be floored to 1
	if got := cfg.stackCapacity(); got != 50 {
		t.Errorf("stackCapacity() = %d, want 50", got)
	}
}
