// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Result is the full report returned by Run: the evidence summary from
// the scheduler plus the posterior-derived outputs requested by cfg
// (§6's output-file arguments), computed without necessarily having
// written any files — the cmd/nested binary and library callers that
// just want numbers in memory both go through this path.
type Result struct {
	RunResult
	Posterior  PosteriorStats
	EqualsRows []PosteriorRow   // only populated if cfg.Equals
	Clusters   [][]PosteriorRow // only populated if cfg.ClusterPosteriors
}

// Run is the library's top-level entry point, analogous to
// optimize.Global's validate-then-run-then-collect shape: it validates
// cfg, builds or resumes the sampler state, drives the scheduler to
// termination, and assembles the requested output files.
//
// model and newSampler are the caller's C3/C4 collaborators. newSampler
// is called once per worker so each worker's ContourSampler instance is
// never shared across goroutines (§9's callback re-entrancy note).
func Run(ctx context.Context, cfg *Config, model *ModelEvaluator, newSampler func() ContourSampler, log *logrus.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initialState(cfg, model)
	if err != nil {
		return nil, err
	}

	feedback := NewFeedback(log, cfg.Feedback)
	sched := NewScheduler(cfg, model, newSampler, st, feedback)

	if cfg.WriteDead && cfg.BaseDir != "" {
		deadPath := filepath.Join(cfg.BaseDir, cfg.FileRoot+"_dead.txt")
		f, err := os.Create(deadPath)
		if err != nil {
			return nil, wrapIOError("create dead-point file", deadPath, err)
		}
		defer f.Close()
		sched.SetDeadWriter(f)
	}

	if cfg.WriteResume && cfg.BaseDir != "" {
		path := resumePath(cfg)
		sched.OnCheckpoint(func(promotions int) {
			if cfg.UpdateFiles <= 0 || promotions%cfg.UpdateFiles != 0 {
				return
			}
			if err := SaveCheckpoint(path, &State{
				Stack:      st.Stack,
				Evidence:   st.Evidence,
				MeanCalls:  st.MeanCalls,
				TotalCalls: st.TotalCalls,
				Reservoir:  st.Reservoir,
			}); err != nil {
				feedback.Log.WithError(err).Warn("nested: checkpoint write failed")
			}
		})
	}

	runResult, err := sched.Run(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.WriteResume && cfg.BaseDir != "" {
		if err := SaveCheckpoint(resumePath(cfg), &State{
			Stack:      st.Stack,
			Evidence:   st.Evidence,
			MeanCalls:  runResult.MeanCalls,
			TotalCalls: runResult.TotalCalls,
			Reservoir:  runResult.Reservoir,
		}); err != nil {
			return nil, err
		}
	}

	result := &Result{RunResult: *runResult}
	result.Posterior = runResult.Reservoir.Summarize(runResult.LogZ)
	if cfg.Equals {
		n := cfg.BoostPosterior
		if n <= 0 {
			n = runResult.Reservoir.Len()
		}
		result.EqualsRows = runResult.Reservoir.EquallyWeighted(runResult.LogZ, n, sched.rng)
	}
	if cfg.ClusterPosteriors {
		result.Clusters = SingleCluster{}.Cluster(runResult.Reservoir.Rows())
	}

	if cfg.BaseDir != "" {
		if cfg.WriteStats {
			if err := writeStatsFile(cfg, result); err != nil {
				return nil, err
			}
		}
		if cfg.Posteriors {
			if err := writePosteriorFile(cfg, runResult.Reservoir, runResult.LogZ); err != nil {
				return nil, err
			}
		}
		if cfg.WriteLive {
			if err := writeLiveFile(cfg, st.Stack); err != nil {
				return nil, err
			}
		}
		if cfg.WriteParamNames {
			if err := writeParamNamesFile(cfg); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// initialState builds a fresh sampler State from cfg, or loads one from
// cfg's resume path when cfg.ReadResume is set (§4.9).
func initialState(cfg *Config, model *ModelEvaluator) (*State, error) {
	if cfg.ReadResume {
		st, err := LoadCheckpoint(resumePath(cfg), cfg)
		if err != nil {
			return nil, err
		}
		return st, nil
	}

	stack := NewStack(cfg.stackCapacity(), cfg.NLive, cfg.NDims, cfg.NDerived)
	rng := newRNG(cfg.Seed)
	if err := stack.GenerateInitial(rng, model); err != nil {
		return nil, err
	}
	return &State{
		Stack:     stack,
		Evidence:  NewEvidence(cfg.PrecisionCriterion, cfg.MaxNDead),
		Reservoir: NewReservoir(cfg.PosteriorCapacity, cfg.MinimumWeight, cfg.PosteriorGrowFirst),
	}, nil
}

func resumePath(cfg *Config) string {
	return filepath.Join(cfg.BaseDir, cfg.FileRoot+".resume")
}

func writeStatsFile(cfg *Config, r *Result) error {
	path := filepath.Join(cfg.BaseDir, cfg.FileRoot+".stats")
	f, err := os.Create(path)
	if err != nil {
		return wrapIOError("create stats file", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "log(Z)       = %.6f +/- %.6f\n", r.LogZ, r.SigmaLogZ)
	fmt.Fprintf(f, "ndead        = %d\n", r.NDead)
	fmt.Fprintf(f, "total_calls  = %d\n", r.TotalCalls)
	fmt.Fprintf(f, "mean_calls   = %.3f\n", r.MeanCalls)
	for i, mean := range r.Posterior.Mean {
		fmt.Fprintf(f, "param[%d]     = %.6f +/- %.6f\n", i, mean, r.Posterior.StdDev[i])
	}
	return nil
}

// writePosteriorFile emits <file_root>.txt (§6's filesystem surface): one
// line per reservoir row, "weight logL physical… derived…". weight is
// linear-space (exp(logweight - logZFinal)), matching §6's column name —
// LogWeight/logZFinal themselves stay in log-space everywhere else in the
// package; this is the one place they are exponentiated for output.
func writePosteriorFile(cfg *Config, reservoir *Reservoir, logZFinal float64) error {
	path := filepath.Join(cfg.BaseDir, cfg.FileRoot+".txt")
	f, err := os.Create(path)
	if err != nil {
		return wrapIOError("create posterior file", path, err)
	}
	defer f.Close()

	for _, row := range reservoir.Rows() {
		w := math.Exp(row.LogWeight - logZFinal)
		fmt.Fprintf(f, "%.8e %.8e", w, row.LogL)
		for _, v := range row.Physical {
			fmt.Fprintf(f, " %.8e", v)
		}
		for _, v := range row.Derived {
			fmt.Fprintf(f, " %.8e", v)
		}
		fmt.Fprintln(f)
	}
	return nil
}

// writeLiveFile emits <file_root>_phys_live.txt (§6, optional): the
// current live set at the moment Run returns, one line per live slot,
// "physical… derived… logL".
func writeLiveFile(cfg *Config, stack *Stack) error {
	path := filepath.Join(cfg.BaseDir, cfg.FileRoot+"_phys_live.txt")
	f, err := os.Create(path)
	if err != nil {
		return wrapIOError("create live-point file", path, err)
	}
	defer f.Close()

	for i := 0; i < stack.Cap(); i++ {
		p := stack.Read(i)
		if !p.Daughter.Live() {
			continue
		}
		for _, v := range p.Physical {
			fmt.Fprintf(f, "%.8e ", v)
		}
		for _, v := range p.Derived {
			fmt.Fprintf(f, "%.8e ", v)
		}
		fmt.Fprintf(f, "%.8e\n", p.L0)
	}
	return nil
}

// writeParamNamesFile emits <file_root>.paramnames, the usual
// nested-sampling convention for labeling a posterior file's columns
// (one name per line, physical parameters then derived). cfg.ParamNames
// / cfg.DerivedNames let a caller supply real names; columns left
// unnamed fall back to a generic "p<i>" / "d<i>" label rather than
// omitting the file.
func writeParamNamesFile(cfg *Config) error {
	path := filepath.Join(cfg.BaseDir, cfg.FileRoot+".paramnames")
	f, err := os.Create(path)
	if err != nil {
		return wrapIOError("create paramnames file", path, err)
	}
	defer f.Close()

	for i := 0; i < cfg.NDims; i++ {
		name := fmt.Sprintf("p%d", i)
		if i < len(cfg.ParamNames) && cfg.ParamNames[i] != "" {
			name = cfg.ParamNames[i]
		}
		fmt.Fprintln(f, name)
	}
	for i := 0; i < cfg.NDerived; i++ {
		name := fmt.Sprintf("d%d", i)
		if i < len(cfg.DerivedNames) && cfg.DerivedNames[i] != "" {
			name = cfg.DerivedNames[i]
		}
		fmt.Fprintln(f, name)
	}
	return nil
}
