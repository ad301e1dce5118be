package cmd

import (
	"github.com/spf13/cobra"

	"testafy/internal/mcpserver"
)

func newMCPServerCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve testafy as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout that lets an AI
assistant submit behavioral tests and read their results.

Configure it in your assistant's MCP settings, for example:

  {
    "mcpServers": {
      "testafy": {
        "command": "testafy",
        "args": ["mcp-server"],
        "env": {"TESTAFY_LOGIN": "me", "TESTAFY_PASSWORD": "secret"}
      }
    }
  }

Logs go to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			s := mcpserver.New(cfg.TestConfig(""), cfg.WaitOptions(), GetVersion(), clientOptions(cfg)...)
			return s.Start(cmd.Context())
		},
	}
}
