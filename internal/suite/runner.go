package suite

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"testafy/pkg/testafy"
)

// Runner executes scenarios against the service. Each scenario gets its own
// testafy.Test, so scenarios never share run state.
type Runner struct {
	base       testafy.TestConfig
	clientOpts []testafy.Option
	reporter   Reporter
	logger     TestLogger
	sink       ScreenshotSink
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClientOptions passes options to every client the runner creates.
func WithClientOptions(opts ...testafy.Option) RunnerOption {
	return func(r *Runner) {
		r.clientOpts = append(r.clientOpts, opts...)
	}
}

func WithReporter(reporter Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

func WithLogger(logger TestLogger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithScreenshotSink stores screenshots of scenarios that ask for them.
func WithScreenshotSink(sink ScreenshotSink) RunnerOption {
	return func(r *Runner) {
		r.sink = sink
	}
}

// NewRunner creates a runner. base supplies the endpoint, credentials and
// defaults; each scenario replaces its script.
func NewRunner(base testafy.TestConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		base:   base,
		logger: NewStdoutLogger(false, false),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = NewConsoleReporter(os.Stdout, r.logger.IsVerboseEnabled())
	}
	return r
}

// Run executes the scenarios selected by config on a pool of
// config.Parallel workers. With FailFast, scenarios not yet started when a
// scenario fails are reported as skipped; scenarios already running finish.
// The returned error is only set when the report file cannot be written.
func (r *Runner) Run(ctx context.Context, config Configuration, scenarios []Scenario) (*SuiteResult, error) {
	filtered := FilterScenarios(scenarios, config)
	result := &SuiteResult{
		StartTime:      time.Now(),
		TotalScenarios: len(filtered),
		Configuration:  config,
	}
	r.reporter.ReportStart(config, len(filtered))

	workers := config.Parallel
	if workers < 1 {
		workers = 1
	}

	results := make([]ScenarioResult, len(filtered))
	var stop atomic.Bool

	var g errgroup.Group
	g.SetLimit(workers)
	for i, sc := range filtered {
		if reason := r.stopReason(ctx, &stop); reason != "" {
			results[i] = skipped(sc, reason)
			r.reporter.ReportScenarioResult(results[i])
			continue
		}

		g.Go(func() error {
			if reason := r.stopReason(ctx, &stop); reason != "" {
				results[i] = skipped(sc, reason)
			} else {
				r.logger.Debug("🔄 Executing scenario: %s\n", sc.Name)
				results[i] = r.runScenario(ctx, sc, config)
			}
			r.reporter.ReportScenarioResult(results[i])

			if config.FailFast && (results[i].Result == ResultFailed || results[i].Result == ResultError) {
				if stop.CompareAndSwap(false, true) {
					r.logger.Debug("🛑 Fail-fast triggered by scenario: %s\n", sc.Name)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	result.ScenarioResults = results
	for _, res := range results {
		updateCounters(result, res)
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	r.reporter.ReportSuiteResult(*result)

	if config.ReportPath != "" {
		if err := WriteJSONReport(config.ReportPath, *result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *Runner) stopReason(ctx context.Context, stop *atomic.Bool) string {
	if stop.Load() {
		return "not run: an earlier scenario failed (fail-fast)"
	}
	if err := ctx.Err(); err != nil {
		return "not run: " + err.Error()
	}
	return ""
}

func skipped(sc Scenario, reason string) ScenarioResult {
	now := time.Now()
	return ScenarioResult{
		Scenario:  sc,
		Result:    ResultSkipped,
		Error:     reason,
		StartTime: now,
		EndTime:   now,
	}
}

func updateCounters(result *SuiteResult, res ScenarioResult) {
	switch res.Result {
	case ResultPassed:
		result.PassedScenarios++
	case ResultFailed:
		result.FailedScenarios++
	case ResultSkipped:
		result.SkippedScenarios++
	case ResultError:
		result.ErrorScenarios++
	}
}

// runScenario submits one scenario, waits for it and checks its expectations.
func (r *Runner) runScenario(ctx context.Context, sc Scenario, config Configuration) (res ScenarioResult) {
	res = ScenarioResult{
		Scenario:  sc,
		StartTime: time.Now(),
	}
	defer func() {
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
	}()

	if sc.Skip {
		res.Result = ResultSkipped
		res.Error = "skipped in suite file"
		return res
	}

	r.reporter.ReportScenarioStart(sc)

	script, err := RenderScript(sc)
	if err != nil {
		return errored(res, err)
	}

	tc := r.base
	tc.Script = script
	if sc.Product != "" {
		tc.Product = sc.Product
	}
	if sc.Screenshots {
		tc.WantScreenshots = true
	}
	test := testafy.NewTest(tc, r.clientOpts...)

	wait := config.Wait
	if sc.Timeout > 0 {
		wait.MaxWait = sc.Timeout
	}
	observer := wait.OnPoll
	wait.OnPoll = func(e testafy.PollEvent) {
		res.Polls = e.Attempt
		r.logger.Debug("   ⏳ %s: %s (poll %d, %s)\n", sc.Name, e.Status, e.Attempt, e.Elapsed.Round(time.Millisecond))
		if observer != nil {
			observer(e)
		}
	}
	test.SetWaitOptions(wait)

	res.TestID, err = test.Run(ctx, false)
	res.Status = test.CurrentRun().Status
	if err != nil {
		if lastErr := test.CurrentRun().LastError; lastErr != "" && !testafy.IsKind(err, testafy.KindClientRequest) {
			err = fmt.Errorf("%w (service said: %s)", err, lastErr)
		}
		return errored(res, err)
	}

	if res.Stats, err = test.Stats(ctx); err != nil {
		return errored(res, fmt.Errorf("failed to fetch stats: %w", err))
	}
	if res.TAP, err = test.ResultsString(ctx); err != nil {
		return errored(res, fmt.Errorf("failed to fetch results: %w", err))
	}

	if sc.Screenshots && r.sink != nil {
		shots, err := test.AllScreenshots(ctx)
		if err != nil {
			return errored(res, fmt.Errorf("failed to fetch screenshots: %w", err))
		}
		if res.Screenshots, err = r.sink.Save(ctx, res.TestID, shots); err != nil {
			return errored(res, err)
		}
	}

	res.Failures = sc.Expect.Evaluate(res.Status, res.Stats, res.TAP)
	if len(res.Failures) > 0 {
		res.Result = ResultFailed
	} else {
		res.Result = ResultPassed
	}
	return res
}

func errored(res ScenarioResult, err error) ScenarioResult {
	res.Result = ResultError
	res.Error = err.Error()
	return res
}
