package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/caedael/backlightd/internal/log"
)

// Config holds the parsed configuration file plus the sensor path resolved
// at startup.
type Config struct {
	SensorPath            string
	SensorFile            string
	ResolvedSensorPath    string
	KeyboardBacklightPath string
	ScreenBacklightPath   string
	BrightnessFactor      float64
	UpdateRate            int
	MinBrightness         int
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		SensorPath:            "/sys/bus/iio/devices",
		SensorFile:            "in_illuminance_raw",
		KeyboardBacklightPath: "/sys/class/leds/platform::kbd_backlight",
		ScreenBacklightPath:   "/sys/class/backlight/intel_backlight",
		BrightnessFactor:      1.0,
		UpdateRate:            1,
		MinBrightness:         5,
	}
}

// DefaultPath resolves the config file location from XDG_CONFIG_HOME, falling
// back to a relative .config path when unset.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "backlight_manager", "backlight_manager.conf")
	}
	return filepath.Join(".config", "backlight_manager", "backlight_manager.conf")
}

// Load parses the key=value config file at path. Values run to the first
// whitespace character; unknown keys and malformed lines are skipped.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}

	cfg := Default()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		key, rest, found := strings.Cut(line, "=")
		if !found || key == "" {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		value := fields[0]

		switch key {
		case "sensor_path":
			cfg.SensorPath = value
		case "sensor_file":
			cfg.SensorFile = value
		case "keyboard_backlight_path":
			cfg.KeyboardBacklightPath = value
		case "screen_backlight_path":
			cfg.ScreenBacklightPath = value
		case "brightness_factor":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				log.Warnf("ignoring invalid brightness_factor %q", value)
				continue
			}
			cfg.BrightnessFactor = f
		case "update_rate":
			n, err := strconv.Atoi(value)
			if err != nil {
				log.Warnf("ignoring invalid update_rate %q", value)
				continue
			}
			cfg.UpdateRate = n
		case "min_brightness":
			n, err := strconv.Atoi(value)
			if err != nil {
				log.Warnf("ignoring invalid min_brightness %q", value)
				continue
			}
			cfg.MinBrightness = n
		default:
			log.Debugf("ignoring unknown config key %q", key)
		}
	}

	return cfg, nil
}

// Validate rejects configurations the control loop cannot run with.
func (c *Config) Validate() error {
	if c.ScreenBacklightPath == "" {
		return fmt.Errorf("screen_backlight_path must be set")
	}
	if c.SensorPath == "" || c.SensorFile == "" {
		return fmt.Errorf("sensor_path and sensor_file must be set")
	}
	if c.UpdateRate < 1 {
		return fmt.Errorf("update_rate must be at least 1, got %d", c.UpdateRate)
	}
	if c.BrightnessFactor <= 0 {
		return fmt.Errorf("brightness_factor must be positive, got %g", c.BrightnessFactor)
	}
	if c.MinBrightness < 0 || c.MinBrightness > 100 {
		return fmt.Errorf("min_brightness must be between 0 and 100, got %d", c.MinBrightness)
	}
	return nil
}

// Print writes the resolved configuration in the --print-status format.
func (c *Config) Print(w io.Writer) {
	fmt.Fprintln(w, "Backlight Manager Config:")
	fmt.Fprintf(w, "  Sensor Path: %s\n", c.SensorPath)
	fmt.Fprintf(w, "  Sensor File: %s\n", c.SensorFile)
	fmt.Fprintf(w, "  Sensor File Path: %s\n", c.ResolvedSensorPath)
	fmt.Fprintf(w, "  Keyboard Backlight Path: %s\n", c.KeyboardBacklightPath)
	fmt.Fprintf(w, "  Screen Backlight Path: %s\n", c.ScreenBacklightPath)
	fmt.Fprintf(w, "  Update Rate: %d\n", c.UpdateRate)
	fmt.Fprintf(w, "  Brightness Factor: %f\n", c.BrightnessFactor)
	fmt.Fprintf(w, "  Min Brightness: %d%%\n", c.MinBrightness)
}
