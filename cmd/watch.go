package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"testafy/internal/formatting"
	"testafy/internal/watch"
)

type watchOptions struct {
	debounce     time.Duration
	pollInterval time.Duration
	polling      bool
	quiet        bool
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch SCRIPT_FILE",
		Short: "Re-run a script every time it is saved",
		Long: `Run a script file, then run it again whenever the file changes, until
interrupted. Each run is waited on and its results printed. Changes made
while a run is in progress trigger one more run once it finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			printer, err := newPrinter(cmd, root)
			if err != nil {
				return err
			}
			path := args[0]

			return watch.Loop(cmd.Context(), watch.Config{
				Path:         path,
				Debounce:     opts.debounce,
				PollInterval: opts.pollInterval,
				ForcePolling: opts.polling,
			}, func(ctx context.Context) {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "❌ Failed to read %s: %v\n", path, err)
					return
				}

				fmt.Fprintf(cmd.OutOrStdout(), "🔄 Running %s\n", path)
				client := newClient(cfg, string(data))
				run, err := client.Submit(ctx)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
					return
				}

				view, err := waitAndCollect(ctx, cmd, client, run, cfg, printer.Format(), opts.quiet)
				if err != nil {
					if ctx.Err() == nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
					}
					return
				}
				if err := printer.PrintRun(view); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
				}
				if printer.Format() == formatting.FormatTable {
					fmt.Fprintf(cmd.OutOrStdout(), "👀 Waiting for changes to %s\n", path)
				}
			})
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "Quiet period after a change before re-running")
	cmd.Flags().DurationVar(&opts.pollInterval, "watch-interval", watch.DefaultPollInterval, "Polling interval when file events are unavailable")
	cmd.Flags().BoolVar(&opts.polling, "poll", false, "Poll the file instead of using file system events")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not show progress while waiting")
	return cmd
}
