package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"testafy/internal/repl"
)

func newShellCmd(root *rootOptions) *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Write and run behavioral scripts interactively",
		Long: `Start an interactive shell. Every line you type is added to a script
buffer; lines starting with a colon are commands:

  :check     check the buffered phrases without running them
  :run       submit the buffer and wait for its results
  :show      print the buffer
  :help      list all commands

Use TAB for completion and Ctrl+D or :exit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			session := repl.New(cfg.TestConfig(""), cfg.WaitOptions(), cmd.OutOrStdout(), clientOptions(cfg)...)
			return session.Run(cmd.Context(), history)
		},
	}
	cmd.Flags().StringVar(&history, "history", filepath.Join(os.TempDir(), ".testafy_history"), "Command history file")
	return cmd
}
