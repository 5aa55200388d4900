//go:build cgo

package midi

import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

const driverName = "rtmidi"
