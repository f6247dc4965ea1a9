package backlight

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	logindService     = "org.freedesktop.login1"
	logindSessionPath = "/org/freedesktop/login1/session/auto"
	setBrightnessCall = "org.freedesktop.login1.Session.SetBrightness"
)

// DBusConn is the subset of *dbus.Conn the logind backend needs.
type DBusConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// LogindBackend sets brightness through the current logind session, which
// works without write access to the sysfs files.
type LogindBackend struct {
	conn DBusConn
}

func NewLogindBackend() (*LogindBackend, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("system bus connection failed: %w", err)
	}
	return &LogindBackend{conn: conn}, nil
}

func NewLogindBackendWithConn(conn DBusConn) *LogindBackend {
	return &LogindBackend{conn: conn}
}

func (l *LogindBackend) SetBrightness(subsystem, name string, value uint32) error {
	obj := l.conn.Object(logindService, dbus.ObjectPath(logindSessionPath))
	call := obj.Call(setBrightnessCall, 0, subsystem, name, value)
	return call.Err
}

func (l *LogindBackend) Close() {
	if l.conn != nil {
		l.conn.Close()
	}
}
