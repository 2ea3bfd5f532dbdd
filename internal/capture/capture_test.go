package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultCommand(t *testing.T) {
	require.Equal(t, TermuxCommand, DefaultCommand("android"))
	require.Empty(t, DefaultCommand("linux"))
}

func TestAvailable(t *testing.T) {
	var nilCam *Camera
	require.False(t, nilCam.Available())
	require.False(t, (&Camera{Command: "  "}).Available())
	require.True(t, (&Camera{Command: "true"}).Available())
}

func TestCapture_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	cam := &Camera{Command: "printf 'jpegbytes' > {{output}}", Timeout: 5 * time.Second, Dir: dir}

	path, err := cam.Capture(context.Background())
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "jpegbytes", string(data))
}

func TestCapture_DirVariable(t *testing.T) {
	dir := t.TempDir()
	cam := &Camera{Command: "test -d {{dir}} && printf x > {{output}}", Dir: dir}

	_, err := cam.Capture(context.Background())
	require.NoError(t, err)
}

func TestCapture_NotConfigured(t *testing.T) {
	_, err := (&Camera{}).Capture(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestCapture_CommandFails(t *testing.T) {
	cam := &Camera{Command: "echo 'no camera' >&2; exit 3", Dir: t.TempDir()}

	_, err := cam.Capture(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no camera")
}

func TestCapture_FailureRemovesPartialPhoto(t *testing.T) {
	dir := t.TempDir()
	cam := &Camera{Command: "printf half > {{output}}; exit 1", Dir: dir}

	_, err := cam.Capture(context.Background())
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCapture_TimeoutRemovesPartialPhoto(t *testing.T) {
	dir := t.TempDir()
	cam := &Camera{Command: "printf half > {{output}}; sleep 5", Timeout: 100 * time.Millisecond, Dir: dir}

	_, err := cam.Capture(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "timed out")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCapture_NoPhoto(t *testing.T) {
	cam := &Camera{Command: "true", Dir: t.TempDir()}

	_, err := cam.Capture(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "produced no photo")
}

func TestCapture_Timeout(t *testing.T) {
	cam := &Camera{Command: "sleep 5", Timeout: 100 * time.Millisecond, Dir: t.TempDir()}

	_, err := cam.Capture(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "timed out")
}

func TestCapture_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cam := &Camera{Command: "sleep 5", Dir: t.TempDir()}
	_, err := cam.Capture(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestShellQuote(t *testing.T) {
	require.Equal(t, `'/tmp/it'\''s.jpg'`, shellQuote("/tmp/it's.jpg"))
}
