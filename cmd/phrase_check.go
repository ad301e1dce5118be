package cmd

import (
	"github.com/spf13/cobra"
)

func newPhraseCheckCmd(root *rootOptions) *cobra.Command {
	var script string
	cmd := &cobra.Command{
		Use:   "phrase-check [SCRIPT_FILE | -]",
		Short: "Check a behavioral script without running it",
		Long: `Ask the service whether every phrase of a script is recognized. Nothing
is run. Unrecognized phrases are reported in the service's message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			printer, err := newPrinter(cmd, root)
			if err != nil {
				return err
			}
			text, err := readScript(cmd, script, args)
			if err != nil {
				return err
			}

			message, err := newClient(cfg, text).PhraseCheck(cmd.Context(), text)
			if err != nil {
				return err
			}
			return printer.PrintMessage("message", message)
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "Script text to check")
	return cmd
}
