package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"testafy/internal/config"
	"testafy/internal/formatting"
	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

// clientOptions builds the client options for the resolved configuration.
func clientOptions(cfg config.TestafyConfig) []testafy.Option {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = testafy.DefaultHTTPTimeout
	}
	return []testafy.Option{
		testafy.WithHTTPClient(&http.Client{Timeout: timeout}),
		testafy.WithLogger(logging.Logger("Testafy")),
		testafy.WithUserAgent("testafy-cli/" + GetVersion()),
	}
}

func newClient(cfg config.TestafyConfig, script string) *testafy.Client {
	return testafy.NewClient(cfg.TestConfig(script), clientOptions(cfg)...)
}

func newPrinter(cmd *cobra.Command, opts *rootOptions) (*formatting.Printer, error) {
	format, err := formatting.ParseFormat(opts.output)
	if err != nil {
		return nil, err
	}
	return formatting.NewPrinter(cmd.OutOrStdout(), format), nil
}

// readScript returns the script given inline, from a file argument, or from
// stdin when the argument is "-". An empty result means the default script.
func readScript(cmd *cobra.Command, inline string, args []string) (string, error) {
	if inline != "" && len(args) > 0 {
		return "", fmt.Errorf("give either --script or a script file, not both")
	}
	if inline != "" {
		return inline, nil
	}
	if len(args) == 0 {
		return "", nil
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

// progress shows a spinner on stderr while a run is polled. It is a no-op
// when quiet is set or output is not a table.
type progress struct {
	s *spinner.Spinner
}

func startProgress(cmd *cobra.Command, quiet bool, format formatting.OutputFormat, suffix string) *progress {
	if quiet || format != formatting.FormatTable {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + suffix
	s.Start()
	return &progress{s: s}
}

func (p *progress) update(e testafy.PollEvent) {
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" Test %s is %s (%s)", e.Run.TestID, e.Status, e.Elapsed.Round(time.Second))
	p.s.Unlock()
}

func (p *progress) stop() {
	if p.s != nil {
		p.s.Stop()
	}
}

// checkRun turns a finished run with failures into a testsFailedError.
func checkRun(run testafy.TestRun, stats testafy.Stats) error {
	if run.Status != testafy.StatusCompleted {
		return &testsFailedError{msg: fmt.Sprintf("test run %s finished as %s", run.TestID, run.Status)}
	}
	if stats.Failed > 0 {
		return &testsFailedError{msg: fmt.Sprintf("test run %s: %d of %d checks failed", run.TestID, stats.Failed, stats.Planned)}
	}
	return nil
}

func requireTestID(testID string) (testafy.TestRun, error) {
	testID = strings.TrimSpace(testID)
	if testID == "" {
		return testafy.TestRun{}, fmt.Errorf("--test-id is required")
	}
	return testafy.RunFor(testID), nil
}
