// ABOUTME: Additive software mixer feeding the sound driver
// ABOUTME: Lock-free voice slots mixed on the audio thread without allocation
package mixer

import (
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
)

const (
	// MaxVoices is the number of effects that can sound at once
	MaxVoices = 8

	// MaxVolume is full scale for voice and master volume
	MaxVolume = 128
)

// voice is one playing effect. It is published to a slot once and after
// that only the audio thread touches pos.
type voice struct {
	sample *Sample
	volume int32
	pos    int
}

// Mixer sums the active voices and the test tone into the output buffer
type Mixer struct {
	rate   atomic.Int32
	master atomic.Int32
	voices [MaxVoices]atomic.Pointer[voice]

	toneFreq atomic.Uint64 // float64 bits, 0 means off
	tonePos  uint64        // audio thread only
}

// New creates a mixer at full master volume
func New() *Mixer {
	m := &Mixer{}
	m.rate.Store(audio.DefaultSampleRate)
	m.master.Store(MaxVolume)
	return m
}

// Initialize sets the output rate. Samples loaded afterwards are converted to it.
func (m *Mixer) Initialize(sampleRate int) {
	m.rate.Store(int32(sampleRate))
	m.tonePos = 0
}

// SampleRate returns the output rate
func (m *Mixer) SampleRate() int {
	return int(m.rate.Load())
}

// SetMasterVolume sets the overall level, 0 to MaxVolume
func (m *Mixer) SetMasterVolume(vol int) {
	m.master.Store(int32(min(max(vol, 0), MaxVolume)))
}

// Play starts s on a free voice. It returns false if all voices are busy.
func (m *Mixer) Play(s *Sample, volume int) bool {
	if s == nil || len(s.Data) == 0 {
		return false
	}

	v := &voice{sample: s, volume: int32(min(max(volume, 0), MaxVolume))}
	for i := range m.voices {
		if m.voices[i].CompareAndSwap(nil, v) {
			return true
		}
	}
	return false
}

// StopAll silences every voice
func (m *Mixer) StopAll() {
	for i := range m.voices {
		m.voices[i].Store(nil)
	}
}

// Active returns the number of voices still playing
func (m *Mixer) Active() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].Load() != nil {
			n++
		}
	}
	return n
}

// SetTone turns the sine test tone on at freq Hz, or off with 0
func (m *Mixer) SetTone(freq float64) {
	m.toneFreq.Store(math.Float64bits(max(freq, 0)))
}

// Mix fills frames stereo frames of buf. It runs on the audio thread.
func (m *Mixer) Mix(buf []int16, frames int) {
	out := buf[:frames*2]
	clear(out)

	master := m.master.Load()

	if freq := math.Float64frombits(m.toneFreq.Load()); freq > 0 {
		m.mixTone(out, frames, freq, master)
	}

	for i := range m.voices {
		v := m.voices[i].Load()
		if v == nil {
			continue
		}
		if m.mixVoice(out, v, master) {
			m.voices[i].CompareAndSwap(v, nil)
		}
	}
}

// mixVoice adds v to out and reports whether it has finished
func (m *Mixer) mixVoice(out []int16, v *voice, master int32) bool {
	data := v.sample.Data
	gain := v.volume * master

	n := min(len(out), len(data)-v.pos)
	src := data[v.pos : v.pos+n]
	for i, s := range src {
		out[i] = audio.ClampInt16(int32(out[i]) + int32(s)*gain/(MaxVolume*MaxVolume))
	}

	v.pos += n
	return v.pos >= len(data)
}
