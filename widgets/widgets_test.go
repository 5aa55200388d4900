package widgets_test

import (
	"strings"
	"testing"
	"time"

	"go-midisynth/pitch"
	"go-midisynth/sequencer"
	"go-midisynth/theme"
	"go-midisynth/widgets"
)

func TestTraceGrid(t *testing.T) {
	glyphs := []rune{'_', '-'}
	grid := widgets.TraceGrid([]float32{-1, 1, 0, -2}, 4, 2, glyphs)
	want := []string{
		" -  ",
		"_ -_",
	}
	for r, row := range grid {
		if string(row) != want[r] {
			t.Errorf("row %d = %q, want %q", r, string(row), want[r])
		}
	}
	if widgets.TraceGrid(nil, 0, 2, glyphs) != nil {
		t.Errorf("zero width grid is not nil")
	}
	empty := widgets.TraceGrid(nil, 3, 1, glyphs)
	if string(empty[0]) != "   " {
		t.Errorf("empty window = %q", string(empty[0]))
	}
}

func TestMeterCells(t *testing.T) {
	sym := theme.New(nil).Symbols
	if got := string(widgets.MeterCells(0, 0, 6, sym)); got != "······" {
		t.Errorf("silent meter = %q", got)
	}
	if got := string(widgets.MeterCells(1, 1, 6, sym)); got != "██████" {
		t.Errorf("full meter = %q", got)
	}
	// just above -30 dB rms fills half, 0 dB peak marks the end
	got := string(widgets.MeterCells(1, 0.0317, 6, sym))
	if got != "███··▌" {
		t.Errorf("meter = %q", got)
	}
}

func TestRenderRecordsAndEvents(t *testing.T) {
	th := theme.New(nil)
	if out := widgets.RenderRecords(nil, 5, th); !strings.Contains(out, "no recordings yet") {
		t.Errorf("empty records = %q", out)
	}
	rec := sequencer.Record{ID: 3, Name: "New Recording", Sequence: []pitch.Note{pitch.NewNote(49, 440), pitch.NewNote(50, 440)}}
	if got := widgets.RecordLine(rec); got != " 3  New Recording      2 notes   0.50s" {
		t.Errorf("RecordLine = %q", got)
	}
	out := widgets.RenderRecords([]sequencer.Record{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, rec}, 2, th)
	if strings.Contains(out, " 1  a") || !strings.Contains(out, " 3  New Recording") {
		t.Errorf("records limit not applied:\n%s", out)
	}

	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	entries := []sequencer.Entry{{Time: at, Message: "second"}, {Time: at, Message: "first"}}
	out = widgets.RenderEvents(entries, 1, th)
	if !strings.Contains(out, "09:30:00: second") || strings.Contains(out, "first") {
		t.Errorf("events =\n%s", out)
	}
}
