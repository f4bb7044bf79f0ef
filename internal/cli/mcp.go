package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phonekit/phonekit/internal/country"
	phonemcp "github.com/phonekit/phonekit/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP (Model Context Protocol) server",
	Long: `Start a Model Context Protocol server on stdio that exposes phone number
parsing, validation and formatting as tools, resources and prompts for AI
assistants.

Configuration in an MCP client (e.g. claude_desktop_config.json):
  {
    "mcpServers": {
      "phonekit": {
        "command": "phonekit",
        "args": ["mcp", "--country", "385"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("country", "", "Default dialing code for national numbers")
	mcpCmd.Flags().String("area", "", "Default area code for local numbers")
	mcpCmd.Flags().String("format", "", "Default template name or pattern")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formatter, err := cfg.Formatter()
	if err != nil {
		return err
	}

	srv := phonemcp.NewServer(phonemcp.Config{
		Registry:      country.Default(),
		Parse:         cfg.ParserOptions(),
		Formatter:     formatter,
		DefaultFormat: cfg.Format.Default,
		Version:       buildVersion,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
