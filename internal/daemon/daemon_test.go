package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caedael/backlightd/internal/config"
	"github.com/caedael/backlightd/internal/errdefs"
	"github.com/caedael/backlightd/internal/ipc"
)

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	dir := t.TempDir()
	return config.Paths{
		PIDFile: filepath.Join(dir, "backlightd.pid"),
		FIFO:    filepath.Join(dir, "backlightd.fifo"),
	}
}

func TestPidfileRoundTrip(t *testing.T) {
	paths := testPaths(t)

	require.NoError(t, WritePID(paths.PIDFile, 12345))

	pid, err := ReadPID(paths.PIDFile)
	require.NoError(t, err)
	require.Equal(t, 12345, pid)

	require.NoError(t, RemovePID(paths.PIDFile))
	require.NoError(t, RemovePID(paths.PIDFile), "removing twice is not an error")
}

func TestReadPID_Missing(t *testing.T) {
	paths := testPaths(t)
	_, err := ReadPID(paths.PIDFile)
	require.True(t, errors.Is(err, errdefs.ErrNotRunning))
}

func TestReadPID_Garbage(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.PIDFile, []byte("not a pid\n"), 0644))
	_, err := ReadPID(paths.PIDFile)
	require.Error(t, err)
}

func TestIsRunning(t *testing.T) {
	paths := testPaths(t)
	require.False(t, IsRunning(paths))

	require.NoError(t, WritePID(paths.PIDFile, os.Getpid()))
	require.True(t, IsRunning(paths))

	require.NoError(t, RemovePID(paths.PIDFile))
	require.False(t, IsRunning(paths))
}

func TestSetupCleanupCycle(t *testing.T) {
	paths := testPaths(t)

	d, err := Setup(paths)
	require.NoError(t, err)
	require.True(t, IsRunning(paths))

	pid, err := ReadPID(paths.PIDFile)
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), pid)

	// Commands sent while registered arrive through the reader.
	want := ipc.Message{Delta: 25, AmbientToggle: true}
	require.NoError(t, ipc.Send(paths.FIFO, want))

	got, ok, err := d.Reader().Poll()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	d.Cleanup()
	require.False(t, IsRunning(paths))
	_, err = os.Stat(paths.FIFO)
	require.True(t, os.IsNotExist(err), "channel node must not survive cleanup")

	// A fresh registration after cleanup must succeed.
	d2, err := Setup(paths)
	require.NoError(t, err)
	require.True(t, IsRunning(paths))
	d2.Cleanup()
	require.False(t, IsRunning(paths))
}

func TestStop_StaleMarker(t *testing.T) {
	paths := testPaths(t)

	// A marker left behind by a crashed daemon: the pid no longer exists.
	require.NoError(t, WritePID(paths.PIDFile, 1<<30))
	require.NoError(t, ipc.Create(paths.FIFO))

	Stop(paths)

	require.False(t, IsRunning(paths))
	_, err := os.Stat(paths.FIFO)
	require.True(t, os.IsNotExist(err))
}

func TestStop_NothingRunning(t *testing.T) {
	paths := testPaths(t)
	Stop(paths) // best-effort, must not panic or create anything
	require.False(t, IsRunning(paths))
}
