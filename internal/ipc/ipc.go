// Package ipc carries commands from client invocations to the daemon over a
// named pipe. One fixed-size record per write, one per read; the daemon's
// read end is non-blocking so an idle channel never stalls the control loop.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/caedael/backlightd/internal/errdefs"
)

// MessageSize is the fixed wire size of one command record.
const MessageSize = 8

// Message is one command: a signed percent delta and an ambient mode toggle
// request. AmbientToggle asks the daemon to flip ambient mode, not to set it.
type Message struct {
	Delta         int32
	AmbientToggle bool
}

func (m Message) encode() [MessageSize]byte {
	var b [MessageSize]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(m.Delta))
	if m.AmbientToggle {
		b[4] = 1
	}
	return b
}

func decode(b []byte) Message {
	return Message{
		Delta:         int32(binary.LittleEndian.Uint32(b[0:4])),
		AmbientToggle: b[4] != 0,
	}
}

// Create makes the pipe node. The mode lets the owning user's later client
// invocations write to it.
func Create(path string) error {
	if err := unix.Mkfifo(path, 0o622); err != nil {
		return fmt.Errorf("create fifo %s: %w", path, err)
	}
	return nil
}

// Remove unlinks the pipe node. Removing an already-removed node is not an
// error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove fifo %s: %w", path, err)
	}
	return nil
}

// Reader is the daemon's read end. It is opened once, non-blocking, and held
// for the life of the process.
type Reader struct {
	fd   int
	path string
}

// OpenReader opens the pipe for reading without blocking on a writer.
func OpenReader(path string) (*Reader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open fifo %s for reading: %w", path, err)
	}
	return &Reader{fd: fd, path: path}, nil
}

// Poll attempts to read one command. No connected writer or no pending data
// both mean "no command this tick" and return ok=false with a nil error.
func (r *Reader) Poll() (Message, bool, error) {
	buf := make([]byte, MessageSize)
	n, err := unix.Read(r.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return Message{}, false, nil
		}
		return Message{}, false, fmt.Errorf("read fifo %s: %w", r.path, err)
	}
	if n == 0 {
		// No writer currently connected.
		return Message{}, false, nil
	}
	if n < MessageSize {
		return Message{}, false, fmt.Errorf("%w: got %d of %d bytes", errdefs.ErrShortMessage, n, MessageSize)
	}
	return decode(buf), true, nil
}

func (r *Reader) Close() error {
	return unix.Close(r.fd)
}

// Send opens the pipe for writing, delivers exactly one command, and closes.
// The open blocks until the daemon's reader is present, which is guaranteed
// once the daemon has advertised itself.
func Send(path string, msg Message) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open fifo %s for writing: %w", path, err)
	}
	defer f.Close()

	b := msg.encode()
	if _, err := f.Write(b[:]); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}
