// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"

	"github.com/nsampler/nested/nested"
	"github.com/spf13/cobra"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a nested-sampling evidence computation to completion",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a YAML config file (required)")
	runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(runConfigPath)
	if err != nil {
		return err
	}
	return runWithConfig(cfg)
}

func runWithConfig(cfg *nested.Config) error {
	log.SetLevel(logLevelFor(cfg.Feedback))

	model := exampleModel(cfg.NDims)
	sampler := func() nested.ContourSampler { return newExampleSampler(cfg.NumRepeats) }

	result, err := nested.Run(context.Background(), cfg, model, sampler, log)
	if err != nil {
		return err
	}

	log.WithField("logZ", result.LogZ).
		WithField("sigma", result.SigmaLogZ).
		WithField("ndead", result.NDead).
		Info("nested sampling finished")
	return nil
}

func loadConfigFile(path string) (*nested.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return nested.LoadConfigYAML(f)
}
