package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/currentlycurrently/acidtest/mcpserver"
	"github.com/currentlycurrently/acidtest/output"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run acidtest as a Model Context Protocol server over stdio",
	Long: `Run acidtest as an MCP server, exposing a single scan_bundle tool so
an MCP-speaking client can ask for a trust verdict on one of its own
skill bundles before installing or invoking it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := output.NewLoggerWithWriter(loggerVerbosity(), os.Stderr)
		server := mcpserver.NewServer(Version, logger)
		return server.ServeStdio(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
