package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caedael/backlightd/internal/config"
	"github.com/caedael/backlightd/internal/errdefs"
)

// WritePID atomically records pid in the marker file.
func WritePID(path string, pid int) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("write pidfile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write pidfile: %w", err)
	}
	return nil
}

// ReadPID returns the pid recorded in the marker file.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errdefs.ErrNotRunning
		}
		return 0, fmt.Errorf("read pidfile: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pidfile %s: %w", path, err)
	}
	return pid, nil
}

// RemovePID deletes the marker file. A missing file is not an error.
func RemovePID(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pidfile: %w", err)
	}
	return nil
}

// IsRunning reports whether a daemon is registered. By contract this is an
// existence check on the marker file, not a liveness probe: a crashed daemon
// leaves a stale marker behind.
func IsRunning(paths config.Paths) bool {
	_, err := os.Stat(paths.PIDFile)
	return err == nil
}
