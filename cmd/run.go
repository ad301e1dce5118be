package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"testafy/internal/artifacts"
	"testafy/internal/config"
	"testafy/internal/formatting"
	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

type runOptions struct {
	script            string
	async             bool
	screenshots       bool
	screenshotsDir    string
	screenshotsBucket string
	quiet             bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [SCRIPT_FILE | -]",
		Short: "Submit a behavioral test and wait for its results",
		Long: `Submit a behavioral test script and wait until the run finishes, then
print its status, check counts and TAP results.

The script is given with --script, read from a file, or read from stdin
with "-". Without any script the service's sample test is run.

With --async the command prints the test id as soon as the run is queued;
inspect it later with "testafy status --test-id ID".

Examples:
  testafy run login.pbehave
  testafy run --script "For the url http://example.com
then pass this test"
  testafy run login.pbehave --screenshots --screenshots-dir ./shots
  testafy run login.pbehave --async -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.script, "script", "", "Script text to submit")
	cmd.Flags().BoolVar(&opts.async, "async", false, "Return as soon as the run is queued")
	cmd.Flags().BoolVar(&opts.screenshots, "screenshots", false, "Capture screenshots during the run")
	cmd.Flags().StringVar(&opts.screenshotsDir, "screenshots-dir", "", "Save screenshots to this directory")
	cmd.Flags().StringVar(&opts.screenshotsBucket, "screenshots-bucket", "", "Save screenshots to this bucket URL, e.g. file:///tmp/shots")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not show progress while waiting")
	return cmd
}

func runRun(cmd *cobra.Command, args []string, root *rootOptions, opts *runOptions) error {
	cfg, err := root.load(cmd)
	if err != nil {
		return err
	}
	printer, err := newPrinter(cmd, root)
	if err != nil {
		return err
	}
	script, err := readScript(cmd, opts.script, args)
	if err != nil {
		return err
	}

	saveShots := opts.screenshotsDir != "" || opts.screenshotsBucket != "" || cfg.Artifacts.Dir != "" || cfg.Artifacts.Bucket != ""
	if opts.screenshots || (saveShots && !opts.async) {
		cfg.Screenshots = true
	}

	ctx := cmd.Context()
	client := newClient(cfg, script)

	run, err := client.Submit(ctx)
	if err != nil {
		return err
	}
	logging.Info("CLI", "Submitted test run %s", run.TestID)

	if opts.async {
		return printer.PrintRun(formatting.NewRunView(run))
	}

	view, err := waitAndCollect(ctx, cmd, client, run, cfg, printer.Format(), opts.quiet)
	if err != nil {
		return err
	}

	if saveShots {
		if view.Screenshots, err = saveScreenshots(ctx, client, run.TestID, cfg, opts.screenshotsDir, opts.screenshotsBucket); err != nil {
			return err
		}
	}

	if err := printer.PrintRun(view); err != nil {
		return err
	}
	return checkRun(testafy.TestRun{TestID: view.TestID, Status: view.Status}, *view.Stats)
}

// waitAndCollect waits for run to finish and gathers its counts and results.
func waitAndCollect(ctx context.Context, cmd *cobra.Command, client *testafy.Client, run testafy.TestRun, cfg config.TestafyConfig, format formatting.OutputFormat, quiet bool) (formatting.RunView, error) {
	p := startProgress(cmd, quiet, format, fmt.Sprintf("Waiting for test %s...", run.TestID))

	wait := cfg.WaitOptions()
	wait.OnPoll = p.update
	_, run, err := client.Wait(ctx, run, wait)
	p.stop()
	if err != nil {
		return formatting.NewRunView(run), err
	}

	stats, run, err := client.Stats(ctx, run)
	if err != nil {
		return formatting.NewRunView(run), fmt.Errorf("failed to fetch stats: %w", err)
	}
	tap, run, err := client.ResultsString(ctx, run)
	if err != nil {
		return formatting.NewRunView(run), fmt.Errorf("failed to fetch results: %w", err)
	}

	view := formatting.NewRunView(run)
	view.Stats = &stats
	view.Results = tap
	return view, nil
}

// saveScreenshots downloads every screenshot of testID into the flag or
// configured artifacts target and returns the stored keys.
func saveScreenshots(ctx context.Context, client *testafy.Client, testID string, cfg config.TestafyConfig, dir, bucket string) ([]string, error) {
	if dir == "" && bucket == "" {
		dir, bucket = cfg.Artifacts.Dir, cfg.Artifacts.Bucket
	}
	sink, err := artifacts.OpenTarget(ctx, bucket, dir)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, nil
	}
	defer sink.Close()

	shots, _, err := client.FetchAllScreenshotsBase64(ctx, testafy.RunFor(testID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch screenshots: %w", err)
	}
	keys, err := sink.Save(ctx, testID, shots)
	if err != nil {
		return nil, err
	}
	logging.Info("CLI", "Saved %d screenshots to %s", len(keys), sink)
	return keys, nil
}
