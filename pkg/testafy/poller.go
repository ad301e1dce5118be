package testafy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// DefaultPollInterval is the pause between status polls.
	DefaultPollInterval = time.Second

	// DefaultMaxWait bounds how long Wait polls before giving up.
	DefaultMaxWait = 30 * time.Minute
)

// ErrNotSubmitted is returned by Wait for a run without a test id.
var ErrNotSubmitted = errors.New("test run has not been submitted")

// RetryPolicy retries status polls that fail with a transient error
// (KindTransport or KindServer). Client request errors are never retried.
type RetryPolicy struct {
	// Attempts is the total number of tries per poll, including the first.
	Attempts uint
	// Delay is the fixed pause between tries.
	Delay time.Duration
}

// PollEvent describes one completed status poll.
type PollEvent struct {
	Attempt int
	Status  Status
	Elapsed time.Duration
	Run     TestRun
}

// WaitOptions controls Wait and RunAndWait.
type WaitOptions struct {
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// MaxWait defaults to DefaultMaxWait. A negative value disables the
	// limit, leaving cancellation to the context.
	MaxWait time.Duration
	// Retry is optional; nil means a failed poll ends the wait.
	Retry *RetryPolicy
	// OnPoll, if set, is called after every successful poll.
	OnPoll func(PollEvent)
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxWait == 0 {
		o.MaxWait = DefaultMaxWait
	}
	return o
}

// RunAndWait submits the configured script and blocks until the run reaches
// a terminal status, MaxWait elapses or ctx is cancelled. The returned run
// carries the terminal status.
func (c *Client) RunAndWait(ctx context.Context, opts WaitOptions) (TestRun, error) {
	run, err := c.Submit(ctx)
	if err != nil {
		return run, err
	}
	_, run, err = c.Wait(ctx, run, opts)
	return run, err
}

// Wait polls run until IsDone is observed. Polling never assumes progress is
// monotonic: any non-terminal or unknown status just schedules another poll.
// Abandoning the wait does not stop the run on the service.
func (c *Client) Wait(ctx context.Context, run TestRun, opts WaitOptions) (Status, TestRun, error) {
	if !run.Submitted() {
		return StatusUnscheduled, run, ErrNotSubmitted
	}

	opts = opts.withDefaults()
	waitCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.MaxWait > 0 {
		waitCtx, cancel = context.WithTimeoutCause(ctx, opts.MaxWait, ErrPollTimeout)
	}
	defer cancel()

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-waitCtx.Done():
			return StatusUnknown, run, waitError(waitCtx, run)
		case <-timer.C:
		}

		var (
			status Status
			err    error
		)
		status, run, err = c.pollWithRetry(waitCtx, run, opts.Retry)
		if err != nil {
			if waitCtx.Err() != nil {
				return StatusUnknown, run, waitError(waitCtx, run)
			}
			return StatusUnknown, run, err
		}

		c.logger.Debug("Polled test run", "test_id", run.TestID, "status", status.String(), "attempt", attempt)
		if opts.OnPoll != nil {
			opts.OnPoll(PollEvent{
				Attempt: attempt,
				Status:  status,
				Elapsed: time.Since(start),
				Run:     run,
			})
		}

		if IsDone(status) {
			return status, run, nil
		}
		timer.Reset(opts.PollInterval)
	}
}

func waitError(ctx context.Context, run TestRun) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrPollTimeout) {
		return fmt.Errorf("test run %s: %w", run.TestID, ErrPollTimeout)
	}
	return ctx.Err()
}

func (c *Client) pollWithRetry(ctx context.Context, run TestRun, policy *RetryPolicy) (Status, TestRun, error) {
	if policy == nil || policy.Attempts <= 1 {
		return c.PollStatus(ctx, run)
	}

	status := StatusUnknown
	err := retry.Do(
		func() error {
			var err error
			status, run, err = c.PollStatus(ctx, run)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(policy.Attempts),
		retry.Delay(policy.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsTransient),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("Retrying status poll", "test_id", run.TestID, "attempt", n+1, "error", err)
		}),
	)
	return status, run, err
}
