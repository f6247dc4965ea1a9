// Package backlight drives a sysfs backlight device: it reads the device's
// brightness range and writes clamped brightness values, preferring the
// logind D-Bus interface when a session is available.
package backlight

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/caedael/backlightd/internal/log"
)

// Device is a single backlight directory under /sys/class/backlight.
type Device struct {
	fs   afero.Fs
	dir  string
	name string
	max  int

	logind *LogindBackend
}

// Open reads and caches the device's max_brightness. The value is immutable
// for the life of the process.
func Open(fs afero.Fs, dir string) (*Device, error) {
	max, err := readInt(fs, filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("read max_brightness: %w", err)
	}
	if max <= 0 {
		return nil, fmt.Errorf("invalid max_brightness %d in %s", max, dir)
	}

	return &Device{
		fs:   fs,
		dir:  dir,
		name: filepath.Base(dir),
		max:  max,
	}, nil
}

// UseLogind routes writes through the logind session, with direct sysfs as
// the fallback.
func (d *Device) UseLogind(l *LogindBackend) {
	d.logind = l
}

// Max returns the device's maximum brightness in absolute units.
func (d *Device) Max() int {
	return d.max
}

// Current reads the device's actual brightness in absolute units.
func (d *Device) Current() (int, error) {
	v, err := readInt(d.fs, filepath.Join(d.dir, "actual_brightness"))
	if err != nil {
		return 0, fmt.Errorf("read actual_brightness: %w", err)
	}
	return v, nil
}

// Set writes value to the device, clamped to [1, max]. The clamp applies
// regardless of how far out of range the input is.
func (d *Device) Set(value int) error {
	if value < 1 {
		value = 1
	} else if value > d.max {
		value = d.max
	}

	if d.logind != nil {
		err := d.logind.SetBrightness("backlight", d.name, uint32(value))
		if err == nil {
			log.Debugf("set %s to %d/%d via logind", d.name, value, d.max)
			return nil
		}
		log.Debugf("logind SetBrightness failed, falling back to direct sysfs: %v", err)
	}

	path := filepath.Join(d.dir, "brightness")
	data := []byte(strconv.Itoa(value))
	if err := afero.WriteFile(d.fs, path, data, 0644); err != nil {
		return fmt.Errorf("write brightness: %w", err)
	}

	log.Debugf("set %s to %d/%d", d.name, value, d.max)
	return nil
}

// StepValue converts a signed percent step into absolute brightness units.
func (d *Device) StepValue(percent int) int {
	return int(math.Round(float64(d.max) / 100.0 * float64(percent)))
}

func readInt(fs afero.Fs, path string) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
