// Package sensor locates and reads the ambient light sensor under the iio
// device tree.
package sensor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/caedael/backlightd/internal/errdefs"
	"github.com/caedael/backlightd/internal/log"
)

// Locate scans root's subdirectories for one containing a readable filename
// and returns that subdirectory's path. The first match wins.
func Locate(fs afero.Fs, root, filename string) (string, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return "", fmt.Errorf("read sensor device directory %s: %w", root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		devicePath := filepath.Join(root, entry.Name())
		f, err := fs.Open(filepath.Join(devicePath, filename))
		if err != nil {
			log.Debugf("skip %s: no readable %s", entry.Name(), filename)
			continue
		}
		f.Close()

		log.Debugf("found sensor device: %s", devicePath)
		return devicePath, nil
	}

	return "", fmt.Errorf("%w: no device under %s provides %s", errdefs.ErrSensorNotFound, root, filename)
}

// Sensor reads raw illuminance values from a resolved device directory.
type Sensor struct {
	fs       afero.Fs
	dir      string
	filename string
}

func New(fs afero.Fs, dir, filename string) *Sensor {
	return &Sensor{fs: fs, dir: dir, filename: filename}
}

// Path returns the resolved device directory.
func (s *Sensor) Path() string {
	return s.dir
}

// Read returns the sensor's current raw value.
func (s *Sensor) Read() (float64, error) {
	path := filepath.Join(s.dir, s.filename)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return 0, fmt.Errorf("read sensor %s: %w", path, err)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse sensor value from %s: %w", path, err)
	}
	return v, nil
}
