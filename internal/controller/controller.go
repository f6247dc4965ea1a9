// Package controller runs the brightness control loop. Each tick drains at
// most one pending command, applies a one-shot delta, recomputes brightness
// from the sensor when ambient mode is on, and sleeps.
package controller

import (
	"time"

	"github.com/caedael/backlightd/internal/backlight"
	"github.com/caedael/backlightd/internal/config"
	"github.com/caedael/backlightd/internal/ipc"
	"github.com/caedael/backlightd/internal/log"
	"github.com/caedael/backlightd/internal/sensor"
)

// CommandSource yields at most one pending command per call without blocking.
type CommandSource interface {
	Poll() (ipc.Message, bool, error)
}

// Controller owns the loop state. All fields are mutated only by the loop's
// own goroutine.
type Controller struct {
	cfg    *config.Config
	device *backlight.Device
	sensor *sensor.Sensor
	source CommandSource

	ambientEnabled bool
	pendingDelta   int
	minAbsolute    int
}

// New builds a controller. source may be nil for the foreground path, where
// the invoking process seeds the state itself. The configured minimum
// brightness percent is converted to absolute units once, here.
func New(cfg *config.Config, device *backlight.Device, sen *sensor.Sensor, source CommandSource) *Controller {
	return &Controller{
		cfg:         cfg,
		device:      device,
		sensor:      sen,
		source:      source,
		minAbsolute: device.StepValue(cfg.MinBrightness),
	}
}

// RequestDelta stages a signed percent adjustment for the next tick.
// A later request overwrites an unconsumed one.
func (c *Controller) RequestDelta(percent int) {
	c.pendingDelta = percent
}

// SetAmbient sets ambient mode directly. Used by the foreground path; the
// channel protocol only ever toggles.
func (c *Controller) SetAmbient(on bool) {
	c.ambientEnabled = on
}

// AmbientEnabled reports whether ambient tracking is on.
func (c *Controller) AmbientEnabled() bool {
	return c.ambientEnabled
}

// Tick runs one loop iteration: drain, apply delta, ambient recompute.
// Runtime errors are logged and the step skipped; they never stop the loop.
func (c *Controller) Tick() {
	c.drain()

	if c.pendingDelta != 0 {
		c.applyDelta()
		c.pendingDelta = 0
	}

	if c.ambientEnabled {
		c.trackAmbient()
	}
}

func (c *Controller) drain() {
	if c.source == nil {
		return
	}

	msg, ok, err := c.source.Poll()
	if err != nil {
		log.Warnf("read command: %v", err)
		return
	}
	if !ok {
		return
	}

	c.pendingDelta = int(msg.Delta)
	if msg.AmbientToggle {
		c.ambientEnabled = !c.ambientEnabled
		if c.ambientEnabled {
			log.Info("ambient mode enabled")
		} else {
			log.Info("ambient mode disabled")
		}
	}
}

func (c *Controller) applyDelta() {
	current, err := c.device.Current()
	if err != nil {
		log.Errorf("apply delta: %v", err)
		return
	}

	target := current + c.device.StepValue(c.pendingDelta)
	if err := c.device.Set(target); err != nil {
		log.Errorf("apply delta: %v", err)
	}
}

func (c *Controller) trackAmbient() {
	raw, err := c.sensor.Read()
	if err != nil {
		log.Errorf("ambient: %v", err)
		return
	}

	value := int(raw * c.cfg.BrightnessFactor)
	if value < c.minAbsolute {
		value = c.minAbsolute
	}

	if err := c.device.Set(value); err != nil {
		log.Errorf("ambient: %v", err)
	}
}

// Run ticks until stop is closed. The sleep is the loop's only suspension
// point; the channel read in Tick never blocks.
func (c *Controller) Run(stop <-chan struct{}) {
	interval := time.Duration(c.cfg.UpdateRate) * time.Second
	for {
		c.Tick()

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}
