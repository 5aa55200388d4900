package midi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-midisynth/debug"
)

// DeviceEvent is emitted when inputs connect/disconnect
type DeviceEvent struct {
	Type         DeviceEventType
	ID           string
	Name         string
	Manufacturer string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// String renders "<name> <manufacturer> <state>". An unknown manufacturer is
// left out.
func (e DeviceEvent) String() string {
	parts := []string{e.Name}
	if e.Manufacturer != "" {
		parts = append(parts, e.Manufacturer)
	}
	return strings.Join(append(parts, e.Type.String()), " ")
}

// DeviceManager handles hot-plug detection of MIDI inputs
type DeviceManager struct {
	inputs   map[string]*Keyboard
	mu       sync.RWMutex
	closed   bool
	events   chan DeviceEvent
	messages chan Message
	pollRate time.Duration

	preferred []string
	excluded  []string
}

type Option func(*DeviceManager)

func WithPollInterval(d time.Duration) Option {
	return func(dm *DeviceManager) {
		if d > 0 {
			dm.pollRate = d
		}
	}
}

// WithPreferred orders inputs matching any of the case-insensitive patterns
// first.
func WithPreferred(patterns ...string) Option {
	return func(dm *DeviceManager) { dm.preferred = patterns }
}

// WithExcluded skips inputs matching any of the case-insensitive patterns.
func WithExcluded(patterns ...string) Option {
	return func(dm *DeviceManager) { dm.excluded = patterns }
}

// DefaultExcluded skips the virtual ports most systems expose.
var DefaultExcluded = []string{"midi through", "rtmidi"}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts ...Option) *DeviceManager {
	dm := &DeviceManager{
		inputs:   make(map[string]*Keyboard),
		events:   make(chan DeviceEvent, 16),
		messages: make(chan Message, 256),
		pollRate: time.Second,
		excluded: DefaultExcluded,
	}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Messages returns the merged stream of every open input.
func (dm *DeviceManager) Messages() <-chan Message {
	return dm.messages
}

// Inputs returns the IDs of open inputs, preferred first.
func (dm *DeviceManager) Inputs() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.inputs))
	for id := range dm.inputs {
		ids = append(ids, id)
	}
	return orderPreferred(ids, dm.preferred)
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	if err := Available(); err != nil {
		debug.Log("midi", "%v", err)
	}
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) deliver(msg Message) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.closed {
		return
	}
	select {
	case dm.messages <- msg:
	default:
		debug.Log("midi", "message dropped from %s: %s", msg.Port, msg.Hex())
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	debug.Log("midi", "%s", ev)
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	byName := make(map[string]drivers.In, len(inPorts))
	var names []string
	for _, in := range inPorts {
		name := in.String()
		if matchesAny(name, dm.excluded) {
			continue
		}
		byName[name] = in
		names = append(names, name)
	}

	dm.mu.RLock()
	known := make([]string, 0, len(dm.inputs))
	for id := range dm.inputs {
		known = append(known, id)
	}
	dm.mu.RUnlock()

	added, removed := diffPorts(known, orderPreferred(names, dm.preferred))
	for _, id := range added {
		kb, err := NewKeyboard(id, byName[id], dm.deliver)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}
		dm.mu.Lock()
		dm.inputs[id] = kb
		dm.mu.Unlock()
		name, manufacturer := splitPortName(id)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, ID: id, Name: name, Manufacturer: manufacturer})
	}
	for _, id := range removed {
		dm.mu.Lock()
		kb := dm.inputs[id]
		delete(dm.inputs, id)
		dm.mu.Unlock()
		if kb != nil {
			kb.Close()
		}
		name, manufacturer := splitPortName(id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id, Name: name, Manufacturer: manufacturer})
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	inputs := dm.inputs
	dm.inputs = make(map[string]*Keyboard)
	dm.closed = true
	dm.mu.Unlock()

	for _, kb := range inputs {
		kb.Close()
	}
	close(dm.events)
	close(dm.messages)
}

// diffPorts returns the names in seen that are not known, in seen order,
// and the known names that are no longer seen, sorted.
func diffPorts(known, seen []string) (added, removed []string) {
	seenSet := make(map[string]bool, len(seen))
	for _, s := range seen {
		seenSet[s] = true
	}
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
		if !seenSet[k] {
			removed = append(removed, k)
		}
	}
	for _, s := range seen {
		if !knownSet[s] {
			added = append(added, s)
			knownSet[s] = true
		}
	}
	sort.Strings(removed)
	return added, removed
}

// orderPreferred sorts names by the index of the first matching preferred
// pattern, unmatched names last, ties by name.
func orderPreferred(names, preferred []string) []string {
	rank := func(name string) int {
		for i, pat := range preferred {
			if containsCI(name, pat) {
				return i
			}
		}
		return len(preferred)
	}
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, pat := range patterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	if sub == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// splitPortName separates the ALSA style "Client:Port 20:0" into the port
// name and the client, which is the closest thing to a manufacturer the
// driver reports.
func splitPortName(id string) (name, manufacturer string) {
	client, port, ok := strings.Cut(id, ":")
	if !ok {
		return strings.TrimSpace(id), ""
	}
	port = strings.TrimSpace(port)
	// drop the trailing "20:0" client:port numbers
	if i := strings.LastIndexByte(port, ' '); i > 0 && isPortNumber(port[i+1:]) {
		port = port[:i]
	} else if isPortNumber(port) {
		port = ""
	}
	client = strings.TrimSpace(client)
	if port == "" {
		return client, ""
	}
	if port == client {
		return port, ""
	}
	return port, client
}

func isPortNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ':' {
			return false
		}
	}
	return true
}
