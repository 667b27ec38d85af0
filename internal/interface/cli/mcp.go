package cli

import (
	"fmt"

	"github.com/neilberkman/whispapi/cmd/whispapi/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for transcription tools",
	Long: `Start an MCP (Model Context Protocol) server on stdio that lets an
assistant transcribe files and read your transcription history.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "whispapi": {
        "command": "whispapi",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	if err := mcp.StartServer(cfg, dbPath, logger); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
