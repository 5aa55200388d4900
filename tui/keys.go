package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Play        key.Binding
	Record      key.Binding
	Replay      key.Binding
	StopReplay  key.Binding
	Wave        key.Binding
	Policy      key.Binding
	BaseUp      key.Binding
	BaseDown    key.Binding
	SweepUp     key.Binding
	SweepDown   key.Binding
	AttackUp    key.Binding
	AttackDown  key.Binding
	ReleaseUp   key.Binding
	ReleaseDown key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

func newKeyMap() keyMap {
	return keyMap{
		Play:        key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		Record:      Key("record", "r"),
		Replay:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "replay")),
		StopReplay:  Key("stop replay", "x"),
		Wave:        Key("waveform", "w"),
		Policy:      Key("tone policy", "m"),
		BaseUp:      Key("base +1Hz", "F"),
		BaseDown:    Key("base -1Hz", "f"),
		SweepUp:     Key("sweep +", "S"),
		SweepDown:   Key("sweep -", "s"),
		AttackUp:    Key("attack +", "A"),
		AttackDown:  Key("attack -", "a"),
		ReleaseUp:   Key("release +", "E"),
		ReleaseDown: Key("release -", "e"),
		Help:        Key("help", "?"),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Record, k.Replay, k.StopReplay, k.Wave, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Record, k.Replay, k.StopReplay},
		{k.Wave, k.Policy, k.BaseDown, k.BaseUp},
		{k.SweepDown, k.SweepUp, k.AttackDown, k.AttackUp},
		{k.ReleaseDown, k.ReleaseUp, k.Help, k.Quit},
	}
}
