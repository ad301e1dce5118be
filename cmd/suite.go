package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"testafy/internal/artifacts"
	"testafy/internal/suite"
)

type suiteOptions struct {
	parallel          int
	failFast          bool
	scenario          string
	tags              []string
	reportPath        string
	verbose           bool
	debug             bool
	list              bool
	screenshotsDir    string
	screenshotsBucket string
}

func newSuiteCmd(root *rootOptions) *cobra.Command {
	opts := &suiteOptions{}

	cmd := &cobra.Command{
		Use:   "suite PATH",
		Short: "Run a suite of behavioral test scenarios",
		Long: `Run every scenario of a suite file, or of all suite files below a
directory. Scenarios run in parallel and each one is checked against its
expectations.

A suite file looks like:

  name: shop
  vars:
    url: https://shop.example.com
  scenarios:
    - name: home page loads
      script: |
        For the url {{ .vars.url }}
        then the page should contain "Welcome"
      expect:
        passed_min: 1

Examples:
  testafy suite suites/
  testafy suite suites/shop.yaml --scenario "home page loads" --verbose
  testafy suite suites/ --tag smoke --parallel 8 --fail-fast
  testafy suite suites/ --report reports/suite.json
  testafy suite suites/ --list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, args[0], root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "Number of scenarios run at once (default from config, 4)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Skip remaining scenarios after the first failure")
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "Run only the scenario with this name")
	cmd.Flags().StringSliceVar(&opts.tags, "tag", nil, "Run only scenarios with one of these tags")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write a JSON report to this file")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Show scenario details and TAP output")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Show every status poll")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List the selected scenarios without running them")
	cmd.Flags().StringVar(&opts.screenshotsDir, "screenshots-dir", "", "Save screenshots of scenarios that capture them to this directory")
	cmd.Flags().StringVar(&opts.screenshotsBucket, "screenshots-bucket", "", "Save screenshots to this bucket URL")
	return cmd
}

func runSuite(cmd *cobra.Command, path string, root *rootOptions, opts *suiteOptions) error {
	cfg, err := root.load(cmd)
	if err != nil {
		return err
	}

	scenarios, err := suite.LoadScenarios(path)
	if err != nil {
		return err
	}

	config := suite.Configuration{
		Parallel:   cfg.Suite.Parallel,
		FailFast:   cfg.Suite.FailFast || opts.failFast,
		Scenario:   opts.scenario,
		Tags:       opts.tags,
		ReportPath: cfg.Suite.ReportPath,
		Verbose:    opts.verbose,
		Debug:      opts.debug,
		Wait:       cfg.WaitOptions(),
	}
	if opts.parallel > 0 {
		config.Parallel = opts.parallel
	}
	if opts.reportPath != "" {
		config.ReportPath = opts.reportPath
	}

	if opts.list {
		printer, err := newPrinter(cmd, root)
		if err != nil {
			return err
		}
		var names []string
		for _, sc := range suite.FilterScenarios(scenarios, config) {
			names = append(names, sc.Name)
		}
		return printer.PrintList("Scenarios", names)
	}

	runnerOpts := []suite.RunnerOption{
		suite.WithClientOptions(clientOptions(cfg)...),
		suite.WithLogger(suite.NewWriterLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.verbose, opts.debug)),
		suite.WithReporter(suite.NewConsoleReporter(cmd.OutOrStdout(), opts.verbose || opts.debug)),
	}

	dir, bucket := opts.screenshotsDir, opts.screenshotsBucket
	if dir == "" && bucket == "" {
		dir, bucket = cfg.Artifacts.Dir, cfg.Artifacts.Bucket
	}
	sink, err := artifacts.OpenTarget(cmd.Context(), bucket, dir)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
		runnerOpts = append(runnerOpts, suite.WithScreenshotSink(sink))
	}

	runner := suite.NewRunner(cfg.TestConfig(""), runnerOpts...)
	result, err := runner.Run(cmd.Context(), config, scenarios)
	if err != nil {
		return err
	}
	if result.TotalScenarios == 0 {
		return fmt.Errorf("no scenarios selected from %s", path)
	}
	if !result.Succeeded() {
		return &testsFailedError{msg: fmt.Sprintf("%d of %d scenarios failed or errored",
			result.FailedScenarios+result.ErrorScenarios, result.TotalScenarios)}
	}
	return nil
}
