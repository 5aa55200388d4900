package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-midisynth/audio"
	"go-midisynth/midi"
	"go-midisynth/pitch"
	"go-midisynth/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor()
	case "tone":
		err = tone(os.Args[2:])
	default:
		usage()
	}
	midi.CloseDriver()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List all MIDI ports")
	fmt.Println("  monitor              - Print device changes and incoming messages")
	fmt.Println("  tone [flags] <note>  - Play one note through the synth")
}

func listPorts() {
	if err := midi.Available(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("=== MIDI Input Ports (%s) ===\n", midi.DriverName())
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func monitor() {
	if err := midi.Available(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Watching MIDI inputs. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager()
	go dm.Run(ctx)

	mapper := pitch.NewMapper(pitch.DefaultBase)
	events, messages := dm.Events(), dm.Messages()
	for events != nil || messages != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), ev)
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			line := fmt.Sprintf("[%s] %-24s %-9s %s", msg.Timestamp.Format("15:04:05.000"), msg.Port, msg.Hex(), msg.Kind())
			if n, ok := msg.Note(); ok && msg.Kind() == midi.KindKeyPress {
				note := mapper.Note(n)
				v, _ := msg.Velocity()
				line += fmt.Sprintf("  %s %.2fHz velocity %d", note.Name, note.Frequency, v)
			}
			fmt.Println(line)
		}
	}
}

func tone(args []string) error {
	fs := flag.NewFlagSet("tone", flag.ContinueOnError)
	wave := fs.String("wave", "sine", "sine, square, sawtooth, triangle or custom")
	sweep := fs.Float64("sweep", synth.DefaultSweepLength, "tone length in seconds")
	base := fs.Float64("base", pitch.DefaultBase, "frequency of note 49")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: miditest tone [flags] <note>")
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("note %q: %w", fs.Arg(0), err)
	}
	w, err := synth.ParseWaveType(*wave)
	if err != nil {
		return err
	}

	s := synth.New()
	dev, err := audio.Open(s)
	if err != nil {
		return err
	}
	defer dev.Close()

	note := pitch.NewMapper(*base).Note(n)
	cfg := synth.DefaultConfig()
	cfg.Wave, cfg.Policy, cfg.SweepLength = w, synth.PolicyFixed, *sweep
	cfg = cfg.Clamped()
	fmt.Printf("Playing %s (note %d) at %.2fHz, %s for %.2fs\n", note.Name, note.Number, note.Frequency, w, cfg.SweepLength)

	s.Play(note.Frequency, cfg)
	time.Sleep(time.Duration(cfg.SweepLength*float64(time.Second)) + 100*time.Millisecond)
	return nil
}
