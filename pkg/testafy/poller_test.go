package testafy

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAndWait(t *testing.T) {
	svc := newFakeService(t).
		on("test/run", ok(`{"test_run_test_id":"abc123"}`)).
		on("test/status",
			ok(`{"status":"queued"}`),
			ok(`{"status":"running"}`),
			ok(`{"status":"completed"}`))
	client := svc.client()

	var events []PollEvent
	run, err := client.RunAndWait(context.Background(), WaitOptions{
		PollInterval: time.Millisecond,
		OnPoll:       func(e PollEvent) { events = append(events, e) },
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", run.TestID)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 3, svc.count("test/status"))

	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i+1, e.Attempt)
		assert.Equal(t, "abc123", e.Run.TestID)
	}
	assert.Equal(t, StatusQueued, events[0].Status)
	assert.Equal(t, StatusCompleted, events[2].Status)
}

func TestRunAndWaitSubmitFailure(t *testing.T) {
	svc := newFakeService(t).on("test/run",
		reply{status: http.StatusBadRequest, body: `{"error":"invalid script"}`})
	client := svc.client()

	run, err := client.RunAndWait(context.Background(), WaitOptions{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindClientRequest))
	assert.False(t, run.Submitted())
	assert.Zero(t, svc.count("test/status"))
}

func TestWaitNotSubmitted(t *testing.T) {
	svc := newFakeService(t)
	client := svc.client()

	_, _, err := client.Wait(context.Background(), TestRun{}, WaitOptions{})
	assert.ErrorIs(t, err, ErrNotSubmitted)
	assert.Zero(t, svc.total())
}

func TestWaitStoppedIsTerminal(t *testing.T) {
	svc := newFakeService(t).on("test/status",
		ok(`{"status":"running"}`),
		ok(`{"status":"stopped"}`))
	client := svc.client()

	status, run, err := client.Wait(context.Background(), RunFor("abc"), WaitOptions{PollInterval: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, status)
	assert.Equal(t, StatusStopped, run.Status)
}

func TestWaitKeepsPollingThroughUnknownStatus(t *testing.T) {
	svc := newFakeService(t).on("test/status",
		ok(`{"status":"running"}`),
		ok(`{}`),
		ok(`{"status":"queued"}`),
		ok(`{"status":"completed"}`))
	client := svc.client()

	status, _, err := client.Wait(context.Background(), RunFor("abc"), WaitOptions{PollInterval: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, 4, svc.count("test/status"))
}

func TestWaitMaxWait(t *testing.T) {
	svc := newFakeService(t).on("test/status", ok(`{"status":"running"}`))
	client := svc.client()

	start := time.Now()
	_, run, err := client.Wait(context.Background(), RunFor("slow"), WaitOptions{
		PollInterval: 5 * time.Millisecond,
		MaxWait:      50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Contains(t, err.Error(), "slow")
	assert.Equal(t, "slow", run.TestID)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.GreaterOrEqual(t, svc.count("test/status"), 1)
}

func TestWaitCancelled(t *testing.T) {
	svc := newFakeService(t).on("test/status", ok(`{"status":"running"}`))
	client := svc.client()

	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	_, _, err := client.Wait(ctx, RunFor("abc"), WaitOptions{
		PollInterval: time.Millisecond,
		MaxWait:      -1,
		OnPoll: func(PollEvent) {
			polls++
			if polls == 2 {
				cancel()
			}
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrPollTimeout))
	assert.Equal(t, 2, polls)
}

func TestWaitStopsOnPollError(t *testing.T) {
	svc := newFakeService(t).on("test/status",
		ok(`{"status":"running"}`),
		reply{status: http.StatusBadRequest, body: `{"error":"unknown test id"}`})
	client := svc.client()

	_, run, err := client.Wait(context.Background(), RunFor("abc"), WaitOptions{PollInterval: time.Millisecond})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindClientRequest))
	assert.Equal(t, "unknown test id", run.LastError)
}

func TestWaitRetryPolicy(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		svc := newFakeService(t).on("test/status",
			reply{status: http.StatusServiceUnavailable, body: `{"error":"busy"}`},
			reply{status: http.StatusBadGateway, body: `bad gateway`},
			ok(`{"status":"completed"}`))
		client := svc.client()

		status, _, err := client.Wait(context.Background(), RunFor("abc"), WaitOptions{
			PollInterval: time.Millisecond,
			Retry:        &RetryPolicy{Attempts: 3, Delay: time.Millisecond},
		})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, status)
		assert.Equal(t, 3, svc.count("test/status"))
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		svc := newFakeService(t).on("test/status",
			reply{status: http.StatusInternalServerError, body: `{"error":"down"}`})
		client := svc.client()

		_, _, err := client.Wait(context.Background(), RunFor("abc"), WaitOptions{
			PollInterval: time.Millisecond,
			Retry:        &RetryPolicy{Attempts: 2, Delay: time.Millisecond},
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindServer))
		assert.Equal(t, 2, svc.count("test/status"))
	})

	t.Run("never retries client request errors", func(t *testing.T) {
		svc := newFakeService(t).on("test/status",
			reply{status: http.StatusBadRequest, body: `{"error":"bad credentials"}`})
		client := svc.client()

		_, _, err := client.Wait(context.Background(), RunFor("abc"), WaitOptions{
			PollInterval: time.Millisecond,
			Retry:        &RetryPolicy{Attempts: 5, Delay: time.Millisecond},
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindClientRequest))
		assert.Equal(t, 1, svc.count("test/status"))
	})
}

func TestWaitOptionsDefaults(t *testing.T) {
	opts := WaitOptions{}.withDefaults()
	assert.Equal(t, DefaultPollInterval, opts.PollInterval)
	assert.Equal(t, DefaultMaxWait, opts.MaxWait)

	unlimited := WaitOptions{MaxWait: -1}.withDefaults()
	assert.Equal(t, time.Duration(-1), unlimited.MaxWait)
}
