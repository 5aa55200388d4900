package midi

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Keyboard listens to one MIDI input port and forwards every message.
type Keyboard struct {
	id       string
	stopFunc func()
}

// NewKeyboard opens inPort and calls deliver for each incoming message. The
// message bytes are copied, the driver reuses its buffer.
func NewKeyboard(id string, inPort drivers.In, deliver func(Message)) (*Keyboard, error) {
	kb := &Keyboard{id: id}
	if inPort == nil {
		return kb, nil
	}
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		data := append([]byte(nil), msg.Bytes()...)
		deliver(Message{Data: data, Timestamp: time.Now(), Port: id})
	})
	if err != nil {
		return nil, fmt.Errorf("open input %q: %w", id, err)
	}
	kb.stopFunc = stop
	return kb, nil
}

func (kb *Keyboard) ID() string {
	return kb.id
}

func (kb *Keyboard) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
		kb.stopFunc = nil
	}
	return nil
}
