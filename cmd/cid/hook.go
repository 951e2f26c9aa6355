package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cid/internal/config"
	"cid/internal/ipc"
	"cid/internal/logging"
	"cid/internal/paths"
	"cid/internal/policy"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Evaluate a file-read event from the host pipeline",
	Long: `Reads one file-read event as JSON on stdin and writes the decision as
JSON on stdout: either allow the original read, or deny it with substitute
text composed from the daemon's analysis.

Always exits 0. On any internal failure the decision is "allow": degraded
availability must be invisible to the host pipeline.`,
	Run: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

// hookEvent is the host pipeline's read-attempt payload.
type hookEvent struct {
	FilePath  string `json:"filePath"`
	Offset    int    `json:"offset,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Project   string `json:"projectDir,omitempty"`
}

func runHook(cmd *cobra.Command, args []string) {
	decision := evaluateHook(os.Stdin)
	data, err := json.Marshal(decision)
	if err != nil {
		// Last resort: a literal allow keeps the pipeline moving.
		fmt.Println(`{"allow":true}`)
		return
	}
	fmt.Println(string(data))
}

func evaluateHook(stdin io.Reader) policy.Decision {
	var ev hookEvent
	if err := json.NewDecoder(stdin).Decode(&ev); err != nil || ev.FilePath == "" {
		return policy.Decision{Allow: true, Reason: "unparseable event"}
	}

	project := ev.Project
	if project == "" {
		project = resolveProject()
	}
	cfg := config.Load(project)

	logPath, err := paths.DaemonLogPath(project)
	if err != nil {
		return policy.Decision{Allow: true, Reason: "no state directory"}
	}
	logger := logging.NewFileLogger(logPath, logging.LogLevel(cfg.LogLevel))

	client := ipc.NewClient(project, cfg, logger)
	pol := policy.New(project, cfg, client, logger)
	return pol.Evaluate(context.Background(), policy.ReadEvent{
		FilePath:  ev.FilePath,
		Offset:    ev.Offset,
		Limit:     ev.Limit,
		SessionID: ev.SessionID,
	})
}
