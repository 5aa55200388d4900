package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-midisynth/midi"
	"go-midisynth/sequencer"
	"go-midisynth/synth"
	"go-midisynth/theme"
	"go-midisynth/widgets"
)

const (
	baseStep    = 1.0  // Hz
	sweepStep   = 0.1  // seconds
	envelopStep = 0.05 // seconds

	scopeHeight = 8
	listHeight  = 8
)

type Model struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager
	Synth     *synth.Synth
	Theme     *theme.Theme

	keys   keyMap
	help   help.Model
	meter  *synth.Meter
	scope  []float32
	fps    int
	width  int
	status string

	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type frameMsg time.Time

func NewModel(manager *sequencer.Manager, deviceMgr *midi.DeviceManager, s *synth.Synth, th *theme.Theme, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Synth:     s,
		Theme:     th,
		keys:      newKeyMap(),
		help:      help.New(),
		meter:     synth.NewMeter(),
		fps:       fps,
		width:     80,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

// ListenForDevices waits for the next hot-plug event. It returns nil once
// the device manager has shut down.
func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager), m.frame()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) apply(cmd sequencer.Command) Model {
	if err := m.Manager.Apply(cmd); err != nil {
		m.status = err.Error()
	} else {
		m.status = ""
	}
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		if m.Synth != nil {
			m.scope = m.Synth.Scope().Snapshot(m.scope)
			m.meter.Update(m.scope)
		}
		return m, m.frame()

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		m.Manager.Dispatch(sequencer.DeviceChanged{Event: midi.DeviceEvent(msg)})
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.Manager.Snapshot()
	cfg := st.Synth
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Play):
		m = m.apply(sequencer.TogglePlay{})
		if !m.Manager.Snapshot().Playing {
			m.meter.Reset()
		}
	case key.Matches(msg, k.Record):
		m = m.apply(sequencer.ToggleRecord{})
	case key.Matches(msg, k.Replay):
		id := int(msg.String()[0] - '0')
		m = m.apply(sequencer.PlayRecord{ID: id})
	case key.Matches(msg, k.StopReplay):
		m = m.apply(sequencer.StopReplay{})
	case key.Matches(msg, k.Wave):
		m = m.apply(sequencer.SetWaveform{Wave: cfg.Wave.Next()})
	case key.Matches(msg, k.Policy):
		m = m.apply(sequencer.SetPolicy{Policy: cfg.Policy.Next()})
	case key.Matches(msg, k.BaseUp):
		m = m.apply(sequencer.SetBaseFrequency{Hz: st.BaseFrequency + baseStep})
	case key.Matches(msg, k.BaseDown):
		m = m.apply(sequencer.SetBaseFrequency{Hz: st.BaseFrequency - baseStep})
	case key.Matches(msg, k.SweepUp):
		m = m.apply(sequencer.SetSweepLength{Seconds: step(cfg.SweepLength, sweepStep)})
	case key.Matches(msg, k.SweepDown):
		m = m.apply(sequencer.SetSweepLength{Seconds: step(cfg.SweepLength, -sweepStep)})
	case key.Matches(msg, k.AttackUp):
		m = m.apply(sequencer.SetAttack{Seconds: step(cfg.Attack, envelopStep)})
	case key.Matches(msg, k.AttackDown):
		m = m.apply(sequencer.SetAttack{Seconds: step(cfg.Attack, -envelopStep)})
	case key.Matches(msg, k.ReleaseUp):
		m = m.apply(sequencer.SetRelease{Seconds: step(cfg.Release, envelopStep)})
	case key.Matches(msg, k.ReleaseDown):
		m = m.apply(sequencer.SetRelease{Seconds: step(cfg.Release, -envelopStep)})
	}
	return m, nil
}

// step adds d and rounds to milliseconds so repeated steps stay tidy.
func step(v, d float64) float64 {
	return math.Round((v+d)*1000) / 1000
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.Manager.Snapshot()
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())
	recStyle := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)

	// Header with transport state
	transport := fmt.Sprintf("%c PAUSED", th.Symbols.Paused)
	if st.Playing {
		transport = fmt.Sprintf("%c PLAYING", th.Symbols.Playing)
	}
	header := headerStyle.Render("go-midisynth  " + transport)
	if st.Recording {
		header += "  " + recStyle.Render(fmt.Sprintf("%c REC %d notes", th.Symbols.Recording, st.RecordingLen))
	}
	if st.Replays > 0 {
		header += "  " + fgStyle.Render(fmt.Sprintf("%c replaying", th.Symbols.Replaying))
	}

	settings := fgStyle.Render(fmt.Sprintf("wave %-8s policy %-9s base %gHz  sweep %.2fs  attack %.2fs  release %.2fs",
		st.Synth.Wave, st.Synth.Policy, st.BaseFrequency, st.Synth.SweepLength, st.Synth.Attack, st.Synth.Release))

	width := max(m.width-2, 10)
	scope := widgets.RenderScope(m.scope, width, scopeHeight, th)
	meter := widgets.RenderMeter(m.meter, max(width-10, 1), th)

	last := dimStyle.Render("no key pressed yet")
	if st.LastNote.Number != 0 || st.LastNote.Name != "" {
		last = fgStyle.Render(fmt.Sprintf("last %s  %.2fHz  (note %d)", st.LastNote.Name, st.LastNote.Frequency, st.LastNote.Number))
	}

	records := widgets.RenderRecords(m.Manager.Records(), listHeight, th)
	events := widgets.RenderEvents(m.Manager.Events(), listHeight, th)
	lists := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(width/2).Render(records),
		events,
	)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	if st.NoInput() {
		out.WriteString(warnStyle.Render("No MIDI keyboard connected"))
		out.WriteString("\n")
	}
	out.WriteString(settings)
	out.WriteString("\n\n")
	out.WriteString(scope)
	out.WriteString("\n")
	out.WriteString(meter)
	out.WriteString("\n")
	out.WriteString(last)
	out.WriteString("\n\n")
	out.WriteString(lists)
	out.WriteString("\n\n")
	if m.status != "" {
		out.WriteString(warnStyle.Background(th.Surface()).Render(m.status))
		out.WriteString("\n")
	}
	out.WriteString(m.help.View(m.keys))

	return out.String()
}
