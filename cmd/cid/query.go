package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cid/internal/config"
	"cid/internal/ipc"
	"cid/internal/logging"
	"cid/internal/protocol"
)

var (
	queryPath      string
	querySymbol    string
	queryPattern   string
	queryDepth     int
	queryLine      int
	queryDirection string
	queryLimit     int
)

var queryCmd = &cobra.Command{
	Use:   "query <command>",
	Short: "Send a single query to the daemon",
	Long: `Sends one command to the project's daemon and prints the raw response
as JSON. Starts the daemon if needed. Intended for debugging the wire
protocol; the read-interception path uses the same client.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryPath, "path", "", "File path parameter")
	queryCmd.Flags().StringVar(&querySymbol, "symbol", "", "Symbol name parameter")
	queryCmd.Flags().StringVar(&queryPattern, "pattern", "", "Search pattern parameter")
	queryCmd.Flags().IntVar(&queryDepth, "depth", 0, "Graph depth parameter")
	queryCmd.Flags().IntVar(&queryLine, "line", 0, "Line number parameter")
	queryCmd.Flags().StringVar(&queryDirection, "direction", "", "Slice direction (backward, forward)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Result limit")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	command := protocol.Command(args[0])
	if !command.Known() {
		return fmt.Errorf("unknown command %q", args[0])
	}

	project := resolveProject()
	cfg := config.Load(project)
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.WarnLevel})
	client := ipc.NewClient(project, cfg, logger)

	q := protocol.NewQuery(command)
	q.Path = queryPath
	q.Symbol = querySymbol
	q.Pattern = queryPattern
	q.Depth = queryDepth
	q.Line = queryLine
	q.Direction = queryDirection
	q.Limit = queryLimit

	resp := client.Call(context.Background(), q)
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
