package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"deepread/internal/llm"
	"deepread/internal/logging"
	mcpserver "deepread/internal/mcp"
)

var serveFlags struct {
	provider    string
	parallel    int
	taskTimeout time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing list_tasks, show_plan,
and analyze_paper, so an editor-hosted agent can run analyses directly.

The server monitors for parent process death and self-terminates when
the editor disconnects, to avoid zombie server processes.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.provider, "provider", "", "Model provider: openai or mock (default: from environment)")
	f.IntVar(&serveFlags.parallel, "parallel", 2, "Max concurrent generation calls per layer")
	f.DurationVar(&serveFlags.taskTimeout, "task-timeout", 5*time.Minute, "Per-task generation budget (0 = unlimited)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	provider, err := llm.New(serveFlags.provider)
	if err != nil {
		return err
	}

	srv := mcpserver.NewServer(reg, provider)
	srv.Parallel = serveFlags.parallel
	srv.TaskTimeout = serveFlags.taskTimeout

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting deepread MCP server over stdio", "provider", provider.Name())
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
