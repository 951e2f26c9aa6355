package main

import (
	"os"

	"github.com/spf13/cobra"

	"cid/internal/version"
)

var (
	// projectFlag is the CLI --project flag value
	projectFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cid",
	Short: "cid - Code Intelligence Daemon",
	Long: `cid maintains an in-memory, multi-layer analysis of a source tree
(structure, call graph, control/data flow, slices, semantic index) behind a
long-lived daemon, and substitutes compressed analysis summaries for raw
file reads made by a tool-invocation pipeline.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("cid version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "",
		"Project directory (default: current directory)")
}

// resolveProject determines the project directory from the flag, the
// CID_PROJECT env var, or the working directory.
func resolveProject() string {
	if projectFlag != "" {
		return projectFlag
	}
	if env := os.Getenv("CID_PROJECT"); env != "" {
		return env
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
