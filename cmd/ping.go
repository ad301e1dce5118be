package cmd

import (
	"github.com/spf13/cobra"
)

func newPingCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			printer, err := newPrinter(cmd, root)
			if err != nil {
				return err
			}

			message, err := newClient(cfg, "").Ping(cmd.Context())
			if err != nil {
				return err
			}
			return printer.PrintMessage("message", message)
		},
	}
}
