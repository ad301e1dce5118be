package testafy

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestAsyncRun(t *testing.T) {
	svc := newFakeService(t).
		on("test/run", ok(`{"test_run_test_id":"abc123"}`)).
		on("test/status", ok(`{"status":"running"}`), ok(`{"status":"completed"}`)).
		on("test/stats/passed", ok(`{"passed":2}`)).
		on("test/stats/failed", ok(`{"failed":0}`)).
		on("test/stats/planned", ok(`{"planned":2}`)).
		on("test/results", ok(`{"results":[[1,"ok 1"],[2,"ok 2"]]}`)).
		on("test/screenshots", ok(`{"screenshots":["1.png"]}`)).
		on("test/screenshot", ok(`{"screenshot":"AAAA"}`))
	test := NewTestWithClient(svc.client())
	ctx := context.Background()

	done, err := test.Done(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Zero(t, svc.total())

	id, err := test.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "abc123", test.TestID())
	assert.Zero(t, svc.count("test/status"))

	status, err := test.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)

	done, err = test.Done(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, StatusCompleted, test.CurrentRun().Status)

	passed, err := test.Passed(ctx)
	require.NoError(t, err)
	failed, err := test.Failed(ctx)
	require.NoError(t, err)
	planned, err := test.Planned(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 2}, []int{passed, failed, planned})

	stats, err := test.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Passed: 2, Failed: 0, Planned: 2}, stats)

	lines, err := test.Results(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	report, err := test.ResultsString(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok 1\nok 2", report)

	names, err := test.Screenshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.png"}, names)

	shot, err := test.Screenshot(ctx, "1.png")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", shot)

	all, err := test.AllScreenshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1.png": "AAAA"}, all)
}

func TestTestSyncRun(t *testing.T) {
	svc := newFakeService(t).
		on("test/run", ok(`{"test_run_test_id":"sync1"}`)).
		on("test/status", ok(`{"status":"queued"}`), ok(`{"status":"completed"}`))
	test := NewTestWithClient(svc.client())
	test.SetWaitOptions(WaitOptions{PollInterval: time.Millisecond})

	id, err := test.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "sync1", id)
	assert.Equal(t, StatusCompleted, test.CurrentRun().Status)
	assert.Equal(t, 2, svc.count("test/status"))
}

func TestTestRunReplacesPreviousRun(t *testing.T) {
	svc := newFakeService(t).on("test/run",
		ok(`{"test_run_test_id":"first"}`),
		reply{status: http.StatusBadRequest, body: `{"error":"invalid script"}`})
	test := NewTestWithClient(svc.client())

	_, err := test.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "first", test.TestID())

	id, err := test.Run(context.Background(), true)
	require.Error(t, err)
	assert.Empty(t, id)
	assert.Empty(t, test.TestID())
	assert.Equal(t, "invalid script", test.CurrentRun().LastError)
}

func TestTestPhraseCheckAndPing(t *testing.T) {
	svc := newFakeService(t).
		on("phrase_check", ok(`{"message":"valid"}`)).
		on("ping", ok(`{"message":"pong"}`))
	test := NewTest(NewTestConfig(svc.baseURI(), "user", "pass", "then pass this test"),
		WithHTTPClient(svc.server.Client()), WithLogger(quietLogger()))

	msg, err := test.PhraseCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "valid", msg)

	msg, err = test.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", msg)
	assert.NotNil(t, test.Client())
}
