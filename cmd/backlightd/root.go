package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/caedael/backlightd/internal/backlight"
	"github.com/caedael/backlightd/internal/config"
	"github.com/caedael/backlightd/internal/controller"
	"github.com/caedael/backlightd/internal/daemon"
	"github.com/caedael/backlightd/internal/ipc"
	"github.com/caedael/backlightd/internal/log"
	"github.com/caedael/backlightd/internal/sensor"
)

var (
	flagAmbient bool
	flagDaemon  bool
	flagKill    bool
	flagStatus  bool
	flagSet     int
)

var rootCmd = &cobra.Command{
	Use:          "backlightd",
	Short:        "Manage display backlight brightness",
	Long:         "Keep the display backlight at a target level, either through one-shot adjustments or continuous ambient-light-sensor feedback from a background daemon.",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&flagAmbient, "ambient", "a", false, "toggle ambient mode (through the daemon when one is running)")
	f.BoolVarP(&flagDaemon, "daemon", "d", false, "start the daemon if not already running, then deliver this request to it")
	f.BoolVarP(&flagKill, "kill", "k", false, "stop the running daemon")
	f.BoolVarP(&flagStatus, "print-status", "p", false, "print the resolved configuration")
	f.IntVarP(&flagSet, "set", "s", 0, "change brightness by a signed percent")
}

func run(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()

	if flagKill {
		daemon.Stop(paths)
		return nil
	}

	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, config.DefaultPath())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	resolved, err := sensor.Locate(fs, cfg.SensorPath, cfg.SensorFile)
	if err != nil {
		return err
	}
	cfg.ResolvedSensorPath = resolved

	if flagStatus {
		cfg.Print(os.Stdout)
		return nil
	}

	if daemon.IsChild() {
		return runDaemon(fs, cfg, paths)
	}

	message := ipc.Message{Delta: int32(flagSet), AmbientToggle: flagAmbient}

	if flagDaemon {
		if !daemon.IsRunning(paths) {
			if err := daemon.Spawn(os.Args[1:]); err != nil {
				return err
			}
			if err := daemon.WaitReady(paths, 3*time.Second); err != nil {
				return err
			}
		}
		return ipc.Send(paths.FIFO, message)
	}

	if daemon.IsRunning(paths) {
		if flagSet != 0 || flagAmbient {
			return ipc.Send(paths.FIFO, message)
		}
		return nil
	}

	return runForeground(fs, cfg)
}

// runDaemon is the re-executed background instance: register, loop until a
// termination signal, deregister. Any command-line request this invocation
// carried arrives through the channel from the parent.
func runDaemon(fs afero.Fs, cfg *config.Config, paths config.Paths) error {
	d, err := daemon.Setup(paths)
	if err != nil {
		return err
	}
	defer d.Cleanup()

	device, err := openDevice(fs, cfg.ScreenBacklightPath)
	if err != nil {
		return err
	}

	sen := sensor.New(fs, cfg.ResolvedSensorPath, cfg.SensorFile)
	ctrl := controller.New(cfg, device, sen, d.Reader())
	ctrl.Run(d.Done())
	return nil
}

// runForeground applies the request in the invoking process. Ambient mode
// loops here until interrupted rather than detaching.
func runForeground(fs afero.Fs, cfg *config.Config) error {
	device, err := openDevice(fs, cfg.ScreenBacklightPath)
	if err != nil {
		return err
	}

	sen := sensor.New(fs, cfg.ResolvedSensorPath, cfg.SensorFile)
	ctrl := controller.New(cfg, device, sen, nil)

	if flagSet != 0 {
		ctrl.RequestDelta(flagSet)
	}
	ctrl.SetAmbient(flagAmbient)

	if !flagAmbient {
		ctrl.Tick()
		return nil
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGTERM, unix.SIGINT)
	go func() {
		<-sig
		close(stop)
	}()

	ctrl.Run(stop)
	return nil
}

func openDevice(fs afero.Fs, dir string) (*backlight.Device, error) {
	device, err := backlight.Open(fs, dir)
	if err != nil {
		return nil, err
	}

	logind, err := backlight.NewLogindBackend()
	if err != nil {
		log.Debugf("logind backend not available: %v", err)
		log.Debug("using direct sysfs access for brightness control")
		return device, nil
	}

	device.UseLogind(logind)
	return device, nil
}
