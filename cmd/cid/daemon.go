package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cid/internal/config"
	"cid/internal/logging"
	"cid/internal/paths"
	"cid/internal/server"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the analysis daemon in the foreground",
	Long: `Runs the cid daemon for a project. The daemon listens on the
project's deterministic endpoint, writes its PID record and status marker,
and serves analysis queries until signalled or idle.

Clients normally spawn this automatically; running it by hand is for
debugging.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	project := resolveProject()
	cfg := config.Load(project)
	tuning := config.LoadTuning()

	logPath, err := paths.DaemonLogPath(project)
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	logger := logging.NewFileLogger(logPath, logging.LogLevel(cfg.LogLevel))

	srv, err := server.New(project, cfg, tuning, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	srv.Wait()
	srv.Stop()
	return nil
}
