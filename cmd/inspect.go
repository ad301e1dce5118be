package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testafy/internal/artifacts"
	"testafy/internal/formatting"
	"testafy/pkg/testafy"
)

// addTestIDFlag registers the --test-id flag shared by the inspection
// commands.
func addTestIDFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "test-id", "", "Id of a submitted test run")
	_ = cmd.MarkFlagRequired("test-id")
}

func newStatusCmd(root *rootOptions) *cobra.Command {
	var testID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a test run",
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
			run, err := requireTestID(testID)
			if err != nil {
				return err
			}

			_, run, err = newClient(cfg, "").PollStatus(cmd.Context(), run)
			if err != nil {
				return err
			}
			return printer.PrintRun(formatting.NewRunView(run))
		},
	}
	addTestIDFlag(cmd, &testID)
	return cmd
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	var testID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show passed, failed and planned check counts of a test run",
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
			run, err := requireTestID(testID)
			if err != nil {
				return err
			}

			stats, _, err := newClient(cfg, "").Stats(cmd.Context(), run)
			if err != nil {
				return err
			}
			return printer.PrintStats(run.TestID, stats)
		},
	}
	addTestIDFlag(cmd, &testID)
	return cmd
}

func newResultsCmd(root *rootOptions) *cobra.Command {
	var (
		testID string
		format string
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print the TAP results of a test run",
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
			run, err := requireTestID(testID)
			if err != nil {
				return err
			}
			if format != "" {
				cfg.ResultsFormat = format
			}

			lines, _, err := newClient(cfg, "").Results(cmd.Context(), run)
			if err != nil {
				return err
			}
			if printer.Format() == formatting.FormatTable {
				if len(lines) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), formatting.EmptyMessage("No results for test run "+run.TestID))
					return nil
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), testafy.JoinResults(lines))
				return err
			}
			return printer.PrintMessage("results", testafy.JoinResults(lines))
		},
	}
	addTestIDFlag(cmd, &testID)
	cmd.Flags().StringVar(&format, "type", "", "Results type requested from the service")
	return cmd
}

func newScreenshotsCmd(root *rootOptions) *cobra.Command {
	var (
		testID  string
		name    string
		outFile string
		dir     string
		bucket  string
	)
	cmd := &cobra.Command{
		Use:   "screenshots",
		Short: "List, fetch or save the screenshots of a test run",
		Long: `Without further flags, list the screenshot names of a test run.

With --name, fetch one screenshot and write it, base64 encoded, to stdout
or decoded to --out. With --dir or --bucket, save every screenshot.

Examples:
  testafy screenshots --test-id abc123
  testafy screenshots --test-id abc123 --name step1.png --out step1.png
  testafy screenshots --test-id abc123 --dir ./shots
  testafy screenshots --test-id abc123 --bucket mem://`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			printer, err := newPrinter(cmd, root)
			if err != nil {
				return err
			}
			run, err := requireTestID(testID)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client := newClient(cfg, "")

			switch {
			case name != "":
				data, _, err := client.FetchScreenshotBase64(ctx, run, name)
				if err != nil {
					return err
				}
				if outFile == "" {
					return printer.PrintMessage("screenshot", data)
				}
				raw, err := artifacts.Decode(data)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outFile, raw, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", outFile, err)
				}
				return printer.PrintMessage("file", outFile)

			case dir != "" || bucket != "":
				keys, err := saveScreenshots(ctx, client, run.TestID, cfg, dir, bucket)
				if err != nil {
					return err
				}
				return printer.PrintList("Saved screenshots", keys)

			default:
				names, _, err := client.ListScreenshots(ctx, run)
				if err != nil {
					return err
				}
				return printer.PrintList("Screenshots", names)
			}
		},
	}
	addTestIDFlag(cmd, &testID)
	cmd.Flags().StringVar(&name, "name", "", "Screenshot file name to fetch")
	cmd.Flags().StringVar(&outFile, "out", "", "Write the fetched screenshot, decoded, to this file")
	cmd.Flags().StringVar(&dir, "dir", "", "Save all screenshots to this directory")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Save all screenshots to this bucket URL")
	return cmd
}
