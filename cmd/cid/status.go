package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cid/internal/config"
	"cid/internal/endpoint"
	"cid/internal/ipc"
	"cid/internal/lifecycle"
	"cid/internal/logging"
	"cid/internal/status"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status for the project",
	Long:  "Reads the status marker, probes liveness, and queries the daemon if reachable",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the CLI status output.
type statusReport struct {
	Project       string `json:"project"`
	Marker        string `json:"marker"`
	Endpoint      string `json:"endpoint"`
	PIDAlive      bool   `json:"pidAlive"`
	Reachable     bool   `json:"reachable"`
	IndexedFiles  int    `json:"indexedFiles,omitempty"`
	UptimeSeconds int64  `json:"uptimeSeconds,omitempty"`
	Version       string `json:"version,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	project := resolveProject()
	cfg := config.Load(project)
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.WarnLevel})

	report := statusReport{
		Project:  project,
		Marker:   string(status.Read(project)),
		PIDAlive: lifecycle.PIDAlive(project),
	}
	if ep, err := endpoint.Resolve(project); err == nil {
		report.Endpoint = ep.String()
	}

	if lifecycle.Ping(project) {
		report.Reachable = true
		client := ipc.NewClient(project, cfg, logger)
		if ds := client.Status(context.Background()); ds != nil {
			report.IndexedFiles = ds.IndexedFiles
			report.UptimeSeconds = ds.UptimeSeconds
			report.Version = ds.Version
		}
	}

	if statusFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Project:   %s\n", report.Project)
	fmt.Printf("Marker:    %s\n", report.Marker)
	fmt.Printf("Endpoint:  %s\n", report.Endpoint)
	fmt.Printf("PID alive: %v\n", report.PIDAlive)
	fmt.Printf("Reachable: %v\n", report.Reachable)
	if report.Reachable {
		fmt.Printf("Indexed:   %d files\n", report.IndexedFiles)
		fmt.Printf("Uptime:    %ds\n", report.UptimeSeconds)
		fmt.Printf("Version:   %s\n", report.Version)
	}
	return nil
}
