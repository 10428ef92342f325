// ABOUTME: Tests for MIDI file flattening and the tempo map
// ABOUTME: Builds small SMF values in memory and checks beats, lengths and timing
package sequencer

import (
	"math"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var endOfTrack = smf.Message{0xFF, 0x2F, 0x00}

func note(delta uint32, msg midi.Message) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(msg)}
}

func buildSMF(t *testing.T, ticks smf.MetricTicks, tracks ...smf.Track) *smf.SMF {
	t.Helper()

	s := smf.New()
	s.TimeFormat = ticks
	for _, tr := range tracks {
		if err := s.Add(tr); err != nil {
			t.Fatalf("failed to add track: %v", err)
		}
	}
	return s
}

func threeTrackSMF(t *testing.T) *smf.SMF {
	// 96 ticks per quarter; track lengths 10, 25 and 17 beats
	return buildSMF(t, smf.MetricTicks(96),
		smf.Track{
			{Delta: 0, Message: smf.MetaTempo(120)},
			note(0, midi.NoteOn(0, 60, 100)),
			note(96, midi.NoteOff(0, 60)),
			{Delta: 9 * 96, Message: endOfTrack},
		},
		smf.Track{
			note(0, midi.NoteOn(1, 64, 90)),
			note(24*96, midi.NoteOff(1, 64)),
			{Delta: 96, Message: endOfTrack},
		},
		smf.Track{
			note(2*96, midi.ProgramChange(2, 5)),
			{Delta: 15 * 96, Message: endOfTrack},
		},
	)
}

func TestNewScoreTrackLengths(t *testing.T) {
	sc, err := newScore(threeTrackSMF(t))
	if err != nil {
		t.Fatalf("newScore failed: %v", err)
	}

	want := []float64{10, 25, 17}
	if len(sc.lengths) != len(want) {
		t.Fatalf("expected %d tracks, got %d", len(want), len(sc.lengths))
	}
	for i, l := range want {
		if sc.lengths[i] != l {
			t.Errorf("track %d: expected length %v, got %v", i, l, sc.lengths[i])
		}
	}
}

func TestNewScoreEventsSorted(t *testing.T) {
	sc, err := newScore(threeTrackSMF(t))
	if err != nil {
		t.Fatalf("newScore failed: %v", err)
	}

	// Tempo and end-of-track are not channel events
	if len(sc.events) != 5 {
		t.Fatalf("expected 5 channel events, got %d", len(sc.events))
	}

	for i := 1; i < len(sc.events); i++ {
		if sc.events[i].beat < sc.events[i-1].beat {
			t.Errorf("events out of order at %d: %v after %v", i, sc.events[i].beat, sc.events[i-1].beat)
		}
	}

	last := sc.events[len(sc.events)-1]
	if last.beat != 24 || last.status != 0x81 || last.data1 != 64 {
		t.Errorf("unexpected last event: %+v", last)
	}
}

func TestBeatAtTempoMap(t *testing.T) {
	// 60 bpm for the first 4 beats, then 120 bpm
	s := buildSMF(t, smf.MetricTicks(480), smf.Track{
		{Delta: 0, Message: smf.MetaTempo(60)},
		{Delta: 4 * 480, Message: smf.MetaTempo(120)},
		{Delta: 4 * 480, Message: endOfTrack},
	})

	sc, err := newScore(s)
	if err != nil {
		t.Fatalf("newScore failed: %v", err)
	}

	tests := []struct {
		seconds float64
		beat    float64
	}{
		{0, 0},
		{1, 1},
		{4, 4},
		{5, 6},
		{6, 8},
	}

	for _, tt := range tests {
		got := sc.beatAt(tt.seconds)
		if math.Abs(got-tt.beat) > 1e-9 {
			t.Errorf("beatAt(%v): expected %v, got %v", tt.seconds, tt.beat, got)
		}
	}
}

func TestBeatAtDefaultTempo(t *testing.T) {
	sc, err := newScore(buildSMF(t, smf.MetricTicks(96)))
	if err != nil {
		t.Fatalf("newScore failed: %v", err)
	}
	if got := sc.beatAt(3); got != 6 {
		t.Errorf("expected 6 beats after 3s at 120 bpm, got %v", got)
	}
}

func TestReadScoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := threeTrackSMF(t).WriteFile(path); err != nil {
		t.Fatalf("failed to write midi file: %v", err)
	}

	sc, err := readScore(path)
	if err != nil {
		t.Fatalf("readScore failed: %v", err)
	}
	if len(sc.lengths) != 3 || sc.lengths[1] != 25 {
		t.Errorf("unexpected lengths after round trip: %v", sc.lengths)
	}

	if _, err := readScore(filepath.Join(t.TempDir(), "missing.mid")); err == nil {
		t.Error("expected missing file to fail")
	}
}
