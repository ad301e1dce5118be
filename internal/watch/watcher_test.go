package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.pbehave")
	writeScript(t, path, "For the url http://a.example")

	w, err := NewFileWatcher(Config{Path: path})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.config.Debounce)
	assert.Equal(t, DefaultPollInterval, w.config.PollInterval)
	assert.Equal(t, "login.pbehave", w.name)

	_, err = NewFileWatcher(Config{Path: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	_, err = NewFileWatcher(Config{})
	assert.Error(t, err)
}

func TestFileWatcherStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.pbehave")
	writeScript(t, path, "a")

	w, err := NewFileWatcher(Config{Path: path})
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop())
}

func TestFileWatcherDetectsWrites(t *testing.T) {
	for _, polling := range []bool{false, true} {
		name := "fsnotify"
		if polling {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "script.pbehave")
			writeScript(t, path, "a")

			var calls atomic.Int32
			w, err := NewFileWatcher(Config{
				Path:         path,
				Debounce:     20 * time.Millisecond,
				PollInterval: 10 * time.Millisecond,
				ForcePolling: polling,
				OnChange:     func() { calls.Add(1) },
			})
			require.NoError(t, err)
			require.NoError(t, w.Start())
			defer w.Stop()

			if polling {
				assert.True(t, w.IsPolling())
			}

			// Unrelated files in the same directory are ignored.
			writeScript(t, filepath.Join(dir, "other.txt"), "noise")
			time.Sleep(100 * time.Millisecond)
			assert.Equal(t, int32(0), calls.Load())

			writeScript(t, path, "a longer script")
			assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestFileWatcherDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.pbehave")
	writeScript(t, path, "a")

	var calls atomic.Int32
	w, err := NewFileWatcher(Config{
		Path:         path,
		Debounce:     200 * time.Millisecond,
		PollInterval: time.Hour,
		ForcePolling: true,
		OnChange:     func() { calls.Add(1) },
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		w.triggerDebounced()
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.pbehave")
	writeScript(t, path, "a")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Loop(ctx, Config{
			Path:         path,
			Debounce:     10 * time.Millisecond,
			PollInterval: 10 * time.Millisecond,
			ForcePolling: true,
		}, func(context.Context) {
			runs.Add(1)
		})
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	writeScript(t, path, "a changed script")
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Loop did not return after cancellation")
	}
}

func TestLoopMissingFile(t *testing.T) {
	err := Loop(context.Background(), Config{Path: filepath.Join(t.TempDir(), "missing")}, func(context.Context) {
		t.Fatal("fn must not run")
	})
	assert.Error(t, err)
}
