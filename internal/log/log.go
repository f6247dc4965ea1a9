// Package log is a thin leveled logging facade shared by every package.
package log

import (
	"os"

	charm "github.com/charmbracelet/log"
)

var logger = charm.NewWithOptions(os.Stderr, charm.Options{
	ReportTimestamp: true,
	Prefix:          "backlightd",
})

func init() {
	if os.Getenv("BACKLIGHTD_DEBUG") != "" {
		logger.SetLevel(charm.DebugLevel)
	}
}

// SetDebug lowers the log level to debug.
func SetDebug() {
	logger.SetLevel(charm.DebugLevel)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Info(msg interface{}, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

func Fatal(msg interface{}, keyvals ...interface{}) {
	logger.Fatal(msg, keyvals...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
