// ABOUTME: Audio type definitions
// ABOUTME: Defines the PCM stream descriptor and sample conversion helpers
package audio

import (
	"fmt"
	"unsafe"
)

const (
	// 16-bit audio range constants
	MaxInt16 = 32767
	MinInt16 = -32768

	// DefaultSampleRate is used when the host does not ask for one
	DefaultSampleRate = 44100

	// Output streams are always interleaved stereo, 16-bit signed
	StreamChannels = 2
	StreamBits     = 16
)

// StreamFormat describes a linear PCM stream as handed to an output unit.
// It is built once per stream and not modified afterwards.
type StreamFormat struct {
	SampleRate      int
	Channels        int
	BitsPerChannel  int
	SignedInteger   bool
	Packed          bool
	FramesPerPacket int
	BytesPerFrame   int
	BytesPerPacket  int
}

// NewStreamFormat returns the stereo 16-bit signed packed format at the given rate
func NewStreamFormat(sampleRate int) StreamFormat {
	f := StreamFormat{
		SampleRate:      sampleRate,
		Channels:        StreamChannels,
		BitsPerChannel:  StreamBits,
		SignedInteger:   true,
		Packed:          true,
		FramesPerPacket: 1,
	}
	f.BytesPerFrame = f.BitsPerChannel * f.Channels / 8
	f.BytesPerPacket = f.BytesPerFrame * f.FramesPerPacket
	return f
}

// Validate checks that the format is one the output units can render
func (f StreamFormat) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels != StreamChannels {
		return fmt.Errorf("unsupported channel count: %d (supported: %d)", f.Channels, StreamChannels)
	}
	if f.BitsPerChannel != StreamBits || !f.SignedInteger {
		return fmt.Errorf("unsupported sample format: %d-bit signed=%v (supported: 16-bit signed)", f.BitsPerChannel, f.SignedInteger)
	}
	if f.BytesPerFrame != f.BitsPerChannel*f.Channels/8 {
		return fmt.Errorf("inconsistent frame stride: %d bytes", f.BytesPerFrame)
	}
	if f.BytesPerPacket != f.BytesPerFrame*f.FramesPerPacket {
		return fmt.Errorf("inconsistent packet stride: %d bytes", f.BytesPerPacket)
	}
	return nil
}

func (f StreamFormat) String() string {
	return fmt.Sprintf("%dHz %dch %d-bit", f.SampleRate, f.Channels, f.BitsPerChannel)
}

// BytesAsInt16 reinterprets a little-endian S16 device buffer as samples.
// The returned slice shares memory with b; nothing is allocated.
func BytesAsInt16(b []byte) []int16 {
	if len(b) < 2 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&b[0])), len(b)/2)
}

// Float32ToInt16 converts a [-1, 1] sample to 16-bit with clipping
func Float32ToInt16(v float32) int16 {
	s := v * MaxInt16
	if s > MaxInt16 {
		return MaxInt16
	}
	if s < MinInt16 {
		return MinInt16
	}
	return int16(s)
}

// ClampInt16 saturates a mixed 32-bit accumulator to 16-bit range
func ClampInt16(v int32) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}
