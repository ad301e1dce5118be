package testafy

import "context"

// Test pairs a Client with the current run for callers that drive one run at
// a time. It is not safe for concurrent use; create one Test per goroutine.
// Every Run call replaces the current TestRun.
type Test struct {
	client *Client
	run    TestRun
	wait   WaitOptions
}

// NewTest creates a Test with no submitted run.
func NewTest(config TestConfig, opts ...Option) *Test {
	return &Test{client: NewClient(config, opts...)}
}

// NewTestWithClient creates a Test sharing an existing Client.
func NewTestWithClient(client *Client) *Test {
	return &Test{client: client}
}

// SetWaitOptions configures how Run waits when not asynchronous.
func (t *Test) SetWaitOptions(opts WaitOptions) {
	t.wait = opts
}

// Client returns the underlying client.
func (t *Test) Client() *Client {
	return t.client
}

// CurrentRun returns a copy of the current run state.
func (t *Test) CurrentRun() TestRun {
	return t.run
}

// TestID returns the id of the current run, empty if none was submitted.
func (t *Test) TestID() string {
	return t.run.TestID
}

// Run submits the script. With async it returns as soon as the service
// acknowledges the run; otherwise it waits for a terminal status. It returns
// the new test id.
func (t *Test) Run(ctx context.Context, async bool) (string, error) {
	run, err := t.client.Submit(ctx)
	t.run = run
	if err != nil || async {
		return t.run.TestID, err
	}

	_, t.run, err = t.client.Wait(ctx, t.run, t.wait)
	return t.run.TestID, err
}

// Status re-fetches the status of the current run.
func (t *Test) Status(ctx context.Context) (Status, error) {
	var (
		s   Status
		err error
	)
	s, t.run, err = t.client.PollStatus(ctx, t.run)
	return s, err
}

// Done re-fetches the status and reports whether it is terminal.
func (t *Test) Done(ctx context.Context) (bool, error) {
	var (
		done bool
		err  error
	)
	done, t.run, err = t.client.Done(ctx, t.run)
	return done, err
}

// Passed returns the passed count of the current run.
func (t *Test) Passed(ctx context.Context) (int, error) {
	var (
		n   int
		err error
	)
	n, t.run, err = t.client.Passed(ctx, t.run)
	return n, err
}

// Failed returns the failed count of the current run.
func (t *Test) Failed(ctx context.Context) (int, error) {
	var (
		n   int
		err error
	)
	n, t.run, err = t.client.Failed(ctx, t.run)
	return n, err
}

// Planned returns the planned count of the current run.
func (t *Test) Planned(ctx context.Context) (int, error) {
	var (
		n   int
		err error
	)
	n, t.run, err = t.client.Planned(ctx, t.run)
	return n, err
}

// Stats returns all three counts of the current run.
func (t *Test) Stats(ctx context.Context) (Stats, error) {
	var (
		s   Stats
		err error
	)
	s, t.run, err = t.client.Stats(ctx, t.run)
	return s, err
}

// Results returns the result pairs of the current run.
func (t *Test) Results(ctx context.Context) ([]ResultLine, error) {
	var (
		lines []ResultLine
		err   error
	)
	lines, t.run, err = t.client.Results(ctx, t.run)
	return lines, err
}

// ResultsString returns the TAP report of the current run.
func (t *Test) ResultsString(ctx context.Context) (string, error) {
	var (
		s   string
		err error
	)
	s, t.run, err = t.client.ResultsString(ctx, t.run)
	return s, err
}

// Screenshots returns the screenshot names of the current run.
func (t *Test) Screenshots(ctx context.Context) ([]string, error) {
	var (
		names []string
		err   error
	)
	names, t.run, err = t.client.ListScreenshots(ctx, t.run)
	return names, err
}

// Screenshot returns one screenshot of the current run as base64.
func (t *Test) Screenshot(ctx context.Context, name string) (string, error) {
	var (
		data string
		err  error
	)
	data, t.run, err = t.client.FetchScreenshotBase64(ctx, t.run, name)
	return data, err
}

// AllScreenshots returns every screenshot of the current run as base64.
func (t *Test) AllScreenshots(ctx context.Context) (map[string]string, error) {
	var (
		shots map[string]string
		err   error
	)
	shots, t.run, err = t.client.FetchAllScreenshotsBase64(ctx, t.run)
	return shots, err
}

// PhraseCheck validates the configured script.
func (t *Test) PhraseCheck(ctx context.Context) (string, error) {
	return t.client.PhraseCheck(ctx, "")
}

// Ping checks connectivity and credentials.
func (t *Test) Ping(ctx context.Context) (string, error) {
	return t.client.Ping(ctx)
}
