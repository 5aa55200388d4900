package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-midisynth/audio"
	"go-midisynth/config"
	"go-midisynth/debug"
	"go-midisynth/midi"
	"go-midisynth/sequencer"
	"go-midisynth/synth"
	"go-midisynth/theme"
	"go-midisynth/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (.json or .yml), default ~/.config/go-midisynth/config.json")
	debugLog := flag.Bool("debug", false, "write a debug log")
	palettePath := flag.String("palette", "", "GIMP palette (.gpl) for the UI")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *palettePath != "" {
		cfg.UI.Palette = *palettePath
	}

	if cfg.Debug.Enabled || *debugLog {
		path, err := cfg.DebugLogPath()
		if err != nil {
			return err
		}
		if err := debug.Enable(path); err != nil {
			return err
		}
		defer debug.Disable()
	}

	// Load theme
	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	s := synth.New(
		synth.WithMaxVoices(cfg.Synth.MaxVoices),
		synth.WithVolume(cfg.Synth.Volume),
	)

	// No audio, no session
	dev, err := audio.Open(s, audio.WithBufferSize(time.Duration(cfg.Audio.BufferMs)*time.Millisecond))
	if err != nil {
		return err
	}
	// the session starts paused
	if err := dev.Suspend(); err != nil {
		debug.Log("audio", "%v", err)
	}

	manager := sequencer.NewManager(s,
		sequencer.WithOutput(dev),
		sequencer.WithSynthConfig(cfg.Synth.Tone()),
		sequencer.WithBaseFrequency(cfg.Synth.BaseFrequency),
		sequencer.WithReplay(cfg.Playback.Speed, cfg.Playback.Exclusive),
	)
	defer manager.Close()

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(
		midi.WithPollInterval(time.Duration(cfg.MIDI.PollIntervalMs)*time.Millisecond),
		midi.WithPreferred(cfg.MIDI.Preferred...),
		midi.WithExcluded(cfg.MIDI.Excluded...),
	)
	defer midi.CloseDriver()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scanDone := make(chan struct{})
	go func() {
		deviceMgr.Run(ctx)
		close(scanDone)
	}()
	go manager.Run(ctx)
	go forwardMessages(deviceMgr, manager)

	// Create and run TUI
	m := tui.NewModel(manager, deviceMgr, s, th, cfg.UI.FPS)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	// close the inputs before the driver goes away
	cancel()
	<-scanDone
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// forwardMessages feeds every MIDI message to the session until the device
// manager shuts down.
func forwardMessages(dm *midi.DeviceManager, manager *sequencer.Manager) {
	for msg := range dm.Messages() {
		manager.Dispatch(sequencer.MIDIMessage{Message: msg})
	}
}
