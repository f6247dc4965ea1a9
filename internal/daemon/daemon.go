// Package daemon manages the background process lifecycle: detaching from
// the terminal, the pid marker file, the command channel node, and
// signal-driven shutdown.
package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/caedael/backlightd/internal/config"
	"github.com/caedael/backlightd/internal/ipc"
	"github.com/caedael/backlightd/internal/log"
)

// childEnv marks the re-executed background process. Go cannot fork, so the
// parent launches the same binary again in a new session.
const childEnv = "BACKLIGHTD_CHILD"

// IsChild reports whether this process is the detached daemon instance.
func IsChild() bool {
	return os.Getenv(childEnv) == "1"
}

// Spawn re-executes the current binary detached from the terminal: new
// session, stdio on the null device, working directory at the filesystem
// root. The child re-enters main with the same arguments and takes the
// IsChild branch.
func Spawn(args []string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	attr := &os.ProcAttr{
		Dir:   "/",
		Env:   append(os.Environ(), childEnv+"=1"),
		Files: []*os.File{devNull, devNull, devNull},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	}

	proc, err := os.StartProcess(executable, append([]string{executable}, args...), attr)
	if err != nil {
		return fmt.Errorf("start daemon process: %w", err)
	}

	log.Infof("daemon started with pid %d", proc.Pid)
	return proc.Release()
}

// WaitReady polls for the channel node the child creates during Setup.
// Returns an error if the daemon does not come up within timeout.
func WaitReady(paths config.Paths, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(paths.FIFO); err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not create %s within %s", paths.FIFO, timeout)
}

// Daemon is the registered background instance: its marker file, channel
// node, open read end, and stop channel.
type Daemon struct {
	paths  config.Paths
	reader *ipc.Reader
	stop   chan struct{}
	sig    chan os.Signal
}

// Setup registers the current process as the daemon: resets the file
// creation mask, writes the pid marker, creates the channel node, opens its
// read end, and bridges termination signals to the stop channel. Everything
// here completes before the control loop accepts commands; on failure any
// partial registration is rolled back.
func Setup(paths config.Paths) (*Daemon, error) {
	unix.Umask(0)

	if err := WritePID(paths.PIDFile, os.Getpid()); err != nil {
		return nil, err
	}

	if err := ipc.Create(paths.FIFO); err != nil {
		RemovePID(paths.PIDFile)
		return nil, err
	}

	reader, err := ipc.OpenReader(paths.FIFO)
	if err != nil {
		ipc.Remove(paths.FIFO)
		RemovePID(paths.PIDFile)
		return nil, err
	}

	d := &Daemon{
		paths:  paths,
		reader: reader,
		stop:   make(chan struct{}),
		sig:    make(chan os.Signal, 1),
	}

	// The handler only signals; cleanup runs at the control loop's
	// coordination point, never inside the handler.
	signal.Notify(d.sig, unix.SIGTERM, unix.SIGINT)
	go func() {
		s := <-d.sig
		log.Infof("received %s, shutting down", s)
		close(d.stop)
	}()

	log.Infof("daemon registered, pid %d", os.Getpid())
	return d, nil
}

// Reader returns the channel's long-lived read end.
func (d *Daemon) Reader() *ipc.Reader {
	return d.reader
}

// Done is closed when a termination signal arrives.
func (d *Daemon) Done() <-chan struct{} {
	return d.stop
}

// Cleanup deregisters the daemon: closes the read end and removes the
// channel node and pid marker. Safe to call more than once.
func (d *Daemon) Cleanup() {
	signal.Stop(d.sig)
	d.reader.Close()
	if err := ipc.Remove(d.paths.FIFO); err != nil {
		log.Warnf("%v", err)
	}
	if err := RemovePID(d.paths.PIDFile); err != nil {
		log.Warnf("%v", err)
	}
}

// Stop terminates a running daemon from the outside: reads the pid marker,
// sends SIGTERM, and removes the marker and channel node. Best-effort
// throughout; a missing or stale marker is reported, not fatal.
func Stop(paths config.Paths) {
	pid, err := ReadPID(paths.PIDFile)
	if err != nil {
		log.Warnf("stop: %v", err)
	} else if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		log.Warnf("stop: signal pid %d: %v", pid, err)
	} else {
		log.Infof("sent SIGTERM to pid %d", pid)
	}

	if err := ipc.Remove(paths.FIFO); err != nil {
		log.Warnf("stop: %v", err)
	}
	if err := RemovePID(paths.PIDFile); err != nil {
		log.Warnf("stop: %v", err)
	}
}
