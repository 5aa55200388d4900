package midi

import (
	"errors"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrNoDriver is returned when the binary was built without a MIDI driver.
var ErrNoDriver = errors.New("no MIDI driver available (built without cgo)")

// Available reports whether MIDI input can work in this build.
func Available() error {
	if driverName == "" {
		return ErrNoDriver
	}
	return nil
}

// DriverName names the registered driver, or "" without one.
func DriverName() string { return driverName }

// CloseDriver releases the driver. Call once on exit.
func CloseDriver() {
	if driverName != "" {
		gomidi.CloseDriver()
	}
}
