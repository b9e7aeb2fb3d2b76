// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
)

var resumeConfigPath string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue a nested-sampling run from a .resume checkpoint",
	RunE:  runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeConfigPath, "config", "", "path to the YAML config file used for the original run (required)")
	resumeCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(resumeConfigPath)
	if err != nil {
		return err
	}
	cfg.ReadResume = true
	return runWithConfig(cfg)
}
