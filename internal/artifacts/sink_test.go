package artifacts

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkSaveMemory(t *testing.T) {
	ctx := context.Background()
	sink, err := Open(ctx, "mem://")
	require.NoError(t, err)
	defer sink.Close()

	shots := map[string]string{
		"2.png": base64.StdEncoding.EncodeToString([]byte("second")),
		"1.png": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("first")),
	}

	keys, err := sink.Save(ctx, "abc123", shots)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123/1.png", "abc123/2.png"}, keys)

	data, err := sink.Read(ctx, "abc123/1.png")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestSinkSaveInvalidBase64(t *testing.T) {
	ctx := context.Background()
	sink, err := Open(ctx, "mem://")
	require.NoError(t, err)
	defer sink.Close()

	_, err = sink.Save(ctx, "abc", map[string]string{"bad.png": "***"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.png")
}

func TestOpenDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sink, err := OpenDir(dir)
	require.NoError(t, err)
	defer sink.Close()

	_, err = sink.Save(context.Background(), "run1", map[string]string{
		"home.png": base64.StdEncoding.EncodeToString([]byte("png bytes")),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run1", "home.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestOpenTarget(t *testing.T) {
	sink, err := OpenTarget(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, sink)

	sink, err = OpenTarget(context.Background(), "mem://", "ignored")
	require.NoError(t, err)
	require.NotNil(t, sink)
	assert.Equal(t, "mem://", sink.String())
	require.NoError(t, sink.Close())

	_, err = OpenTarget(context.Background(), "nosuchscheme://bucket", "")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "abc/1.png", Key("abc", "1.png"))
	assert.Equal(t, "abc/etc/passwd", Key("abc", "../../etc/passwd"))
	assert.Equal(t, "abc/shots/1.png", Key("abc", "/shots/1.png"))
	assert.Equal(t, "abc/screenshot", Key("abc", ""))
}
