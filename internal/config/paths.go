package config

import (
	"os"
	"path/filepath"
)

// Paths locates the daemon's pidfile and command channel node. Both live in
// the user's runtime directory so a clean stop leaves nothing behind.
type Paths struct {
	PIDFile string
	FIFO    string
}

// DefaultPaths resolves runtime paths from XDG_RUNTIME_DIR, falling back to
// the system temp directory when unset.
func DefaultPaths() Paths {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return Paths{
		PIDFile: filepath.Join(dir, "backlightd.pid"),
		FIFO:    filepath.Join(dir, "backlightd.fifo"),
	}
}
