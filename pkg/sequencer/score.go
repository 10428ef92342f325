// ABOUTME: Standard MIDI file loading
// ABOUTME: Flattens smf tracks into beat-stamped events plus a tempo map
package sequencer

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

const defaultSecondsPerBeat = 0.5 // 120 bpm

type midiEvent struct {
	beat   float64
	status byte
	data1  byte
	data2  byte
}

type tempoPoint struct {
	beat       float64
	seconds    float64
	secPerBeat float64
}

type score struct {
	lengths []float64 // per track, in beats
	events  []midiEvent
	tempo   []tempoPoint
}

func readScore(path string) (*score, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi file %s: %w", path, err)
	}
	return newScore(s)
}

func newScore(s *smf.SMF) (*score, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format: %v", s.TimeFormat)
	}
	tpq := float64(ticks.Ticks4th())
	if tpq <= 0 {
		return nil, fmt.Errorf("invalid resolution: %d ticks per quarter", ticks.Ticks4th())
	}

	sc := &score{}
	type tempoChange struct {
		beat float64
		bpm  float64
	}
	var changes []tempoChange

	for _, track := range s.Tracks {
		var abs uint64
		for _, ev := range track {
			abs += uint64(ev.Delta)
			beat := float64(abs) / tpq

			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				if bpm > 0 {
					changes = append(changes, tempoChange{beat: beat, bpm: bpm})
				}
				continue
			}

			raw := []byte(ev.Message)
			if len(raw) < 2 || raw[0] < 0x80 || raw[0] >= 0xF0 {
				continue
			}

			e := midiEvent{beat: beat, status: raw[0], data1: raw[1]}
			if len(raw) > 2 {
				e.data2 = raw[2]
			}
			sc.events = append(sc.events, e)
		}
		sc.lengths = append(sc.lengths, float64(abs)/tpq)
	}

	sort.SliceStable(sc.events, func(i, j int) bool {
		return sc.events[i].beat < sc.events[j].beat
	})

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].beat < changes[j].beat
	})

	sc.tempo = []tempoPoint{{secPerBeat: defaultSecondsPerBeat}}
	for _, c := range changes {
		last := &sc.tempo[len(sc.tempo)-1]
		spb := 60 / c.bpm
		if c.beat <= last.beat {
			last.secPerBeat = spb
			continue
		}
		sc.tempo = append(sc.tempo, tempoPoint{
			beat:       c.beat,
			seconds:    last.seconds + (c.beat-last.beat)*last.secPerBeat,
			secPerBeat: spb,
		})
	}

	return sc, nil
}

// beatAt converts elapsed playback seconds to a beat position.
// Runs on the render thread.
func (sc *score) beatAt(seconds float64) float64 {
	lo, hi := 0, len(sc.tempo)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if sc.tempo[mid].seconds <= seconds {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	p := sc.tempo[lo]
	return p.beat + (seconds-p.seconds)/p.secPerBeat
}
