// Package errdefs holds sentinel errors shared across packages.
package errdefs

import "errors"

var (
	// ErrSensorNotFound means no device under the configured sensor root
	// provides the configured value file.
	ErrSensorNotFound = errors.New("ambient light sensor not found")

	// ErrNotRunning means no daemon pidfile was found.
	ErrNotRunning = errors.New("daemon not running")

	// ErrShortMessage means a channel read returned a partial record.
	ErrShortMessage = errors.New("short command message")
)
