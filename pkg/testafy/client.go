package testafy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Client drives runs against the service for one TestConfig. It keeps no
// per-run state, so a single Client may serve many runs concurrently; run
// state travels in TestRun values.
type Client struct {
	config                TestConfig
	transport             *Transport
	logger                *slog.Logger
	screenshotConcurrency int
}

// NewClient creates a client. Configuration problems such as a missing base
// URI are reported by the first call, not here.
func NewClient(config TestConfig, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{
		config:                config,
		transport:             newTransport(config.BaseURI, config.credentials(), o),
		logger:                o.logger,
		screenshotConcurrency: o.screenshotConcurrency,
	}
}

// Config returns the client's configuration.
func (c *Client) Config() TestConfig {
	return c.config
}

// call routes op for the configured account mode, executes it and records
// the response diagnostics into run.
func (c *Client) call(ctx context.Context, run TestRun, op Operation, params map[string]any) (*Response, TestRun, error) {
	resp, err := c.transport.Execute(ctx, Route(op, c.config.Mode), params)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindClientRequest {
			run.LastError = apiErr.Message
		}
		return nil, run, err
	}
	return resp, resp.record(run), nil
}

func runParams(run TestRun) map[string]any {
	return map[string]any{"trt_id": run.TestID}
}

// Submit starts a new run of the configured script and returns immediately
// after the service acknowledges it. The returned TestRun replaces any
// previous one. When the service answers without a test id the returned run
// is unsubmitted and the error wraps ErrNoTestID.
func (c *Client) Submit(ctx context.Context) (TestRun, error) {
	params := map[string]any{
		"pbehave":      c.config.script(),
		"asynchronous": true,
	}
	if c.config.WantScreenshots {
		params["screenshots"] = true
	}
	if c.config.Product != "" {
		params["product"] = c.config.Product
	}

	resp, run, err := c.call(ctx, TestRun{}, OpRun, params)
	if err != nil {
		return run, err
	}

	id := resp.Get("test_run_test_id")
	if !id.Exists() || id.String() == "" {
		return run, fmt.Errorf("%s: %w", Route(OpRun, c.config.Mode), ErrNoTestID)
	}

	run.TestID = id.String()
	c.logger.Debug("Submitted test run", "test_id", run.TestID, "mode", c.config.Mode.String())
	return run, nil
}

// PollStatus fetches the current status of run. A run that was never
// submitted is StatusUnscheduled and no request is made.
func (c *Client) PollStatus(ctx context.Context, run TestRun) (Status, TestRun, error) {
	if !run.Submitted() {
		return StatusUnscheduled, run, nil
	}

	resp, run, err := c.call(ctx, run, OpStatus, runParams(run))
	if err != nil {
		return StatusUnknown, run, err
	}

	status := StatusUnknown
	if v := resp.Get("status"); v.Exists() {
		status = ParseStatus(v.String())
	}
	run.Status = status
	return status, run, nil
}

// Done reports whether run has reached a terminal status. A run that was
// never submitted is not done, unlike one the service reports as unscheduled.
func (c *Client) Done(ctx context.Context, run TestRun) (bool, TestRun, error) {
	if !run.Submitted() {
		return false, run, nil
	}
	status, run, err := c.PollStatus(ctx, run)
	if err != nil {
		return false, run, err
	}
	return IsDone(status), run, nil
}

// Passed returns the number of checks that passed.
func (c *Client) Passed(ctx context.Context, run TestRun) (int, TestRun, error) {
	return c.count(ctx, run, OpPassed, "passed")
}

// Failed returns the number of checks that failed.
func (c *Client) Failed(ctx context.Context, run TestRun) (int, TestRun, error) {
	return c.count(ctx, run, OpFailed, "failed")
}

// Planned returns the number of checks in the script. For a completed run
// planned == passed + failed.
func (c *Client) Planned(ctx context.Context, run TestRun) (int, TestRun, error) {
	return c.count(ctx, run, OpPlanned, "planned")
}

func (c *Client) count(ctx context.Context, run TestRun, op Operation, field string) (int, TestRun, error) {
	if !run.Submitted() {
		return 0, run, nil
	}

	resp, run, err := c.call(ctx, run, op, runParams(run))
	if err != nil {
		return 0, run, err
	}
	return int(resp.Get(field).Int()), run, nil
}

// Stats holds the check counts of a run.
type Stats struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Planned int `json:"planned"`
}

// Stats fetches passed, failed and planned concurrently. Each count is its
// own request, so the three may reflect slightly different moments of a run
// that is still in progress.
func (c *Client) Stats(ctx context.Context, run TestRun) (Stats, TestRun, error) {
	var stats Stats
	if !run.Submitted() {
		return stats, run, nil
	}

	queries := []struct {
		op    Operation
		field string
		dst   *int
	}{
		{OpPassed, "passed", &stats.Passed},
		{OpFailed, "failed", &stats.Failed},
		{OpPlanned, "planned", &stats.Planned},
	}
	runs := make([]TestRun, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			n, updated, err := c.count(gctx, run, q.op, q.field)
			runs[i] = updated
			if err != nil {
				return err
			}
			*q.dst = n
			return nil
		})
	}
	err := g.Wait()

	for _, r := range runs {
		run = mergeDiagnostics(run, r)
	}
	if err != nil {
		return Stats{}, run, err
	}
	return stats, run, nil
}

func mergeDiagnostics(dst, src TestRun) TestRun {
	if src.LastMessage != "" {
		dst.LastMessage = src.LastMessage
	}
	if src.LastError != "" {
		dst.LastError = src.LastError
	}
	return dst
}

// PhraseCheck asks the service whether script is valid without running it.
// An empty script checks the configured one.
func (c *Client) PhraseCheck(ctx context.Context, script string) (string, error) {
	if script == "" {
		script = c.config.script()
	}
	resp, _, err := c.call(ctx, TestRun{}, OpPhraseCheck, map[string]any{"pbehave": script})
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

// Ping confirms connectivity and credentials.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, _, err := c.call(ctx, TestRun{}, OpPing, nil)
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}
