// ABOUTME: Sound effect samples for the mixer
// ABOUTME: Decodes MP3 files with go-mp3 and converts them to the output rate
package mixer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/Resonate-Protocol/touchaudio/pkg/audio/resample"
	"github.com/hajimehoshi/go-mp3"
)

// Sample is a preloaded effect, interleaved stereo 16-bit at the mixer rate
type Sample struct {
	Name string
	Data []int16
}

// Frames returns the sample length in frames
func (s *Sample) Frames() int {
	return len(s.Data) / audio.StreamChannels
}

// NewSample wraps interleaved stereo PCM recorded at rate, converting it
// to the mixer rate
func (m *Mixer) NewSample(name string, pcm []int16, rate int) *Sample {
	return &Sample{
		Name: name,
		Data: resample.Convert(pcm, rate, m.SampleRate(), audio.StreamChannels),
	}
}

// LoadMP3 decodes an MP3 stream into a sample
func (m *Mixer) LoadMP3(name string, r io.Reader) (*Sample, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	// go-mp3 always produces 16-bit little-endian stereo
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}
	raw = raw[:len(raw)&^3]

	pcm := slices.Clone(audio.BytesAsInt16(raw))
	return m.NewSample(name, pcm, decoder.SampleRate()), nil
}

// LoadFile loads an MP3 effect from disk, named after the file
func (m *Mixer) LoadFile(path string) (*Sample, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".mp3" {
		return nil, fmt.Errorf("unsupported effect format: %s (supported: .mp3)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open effect: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := m.LoadMP3(name, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
