// ABOUTME: Tests for audio types
// ABOUTME: Tests stream descriptor strides and sample conversion functions
package audio

import "testing"

func TestNewStreamFormat(t *testing.T) {
	tests := []struct {
		rate int
	}{
		{8000},
		{22050},
		{44100},
		{48000},
	}

	for _, tt := range tests {
		f := NewStreamFormat(tt.rate)
		if f.SampleRate != tt.rate {
			t.Errorf("expected rate %d, got %d", tt.rate, f.SampleRate)
		}
		if f.Channels != 2 || f.BitsPerChannel != 16 || !f.SignedInteger {
			t.Errorf("expected stereo 16-bit signed, got %+v", f)
		}
		if f.BytesPerFrame != 4 || f.BytesPerPacket != 4 || f.FramesPerPacket != 1 {
			t.Errorf("unexpected strides: %+v", f)
		}
		if err := f.Validate(); err != nil {
			t.Errorf("rate %d: unexpected validation error: %v", tt.rate, err)
		}
	}
}

func TestStreamFormatValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*StreamFormat)
	}{
		{"zero rate", func(f *StreamFormat) { f.SampleRate = 0 }},
		{"mono", func(f *StreamFormat) { f.Channels = 1 }},
		{"24-bit", func(f *StreamFormat) { f.BitsPerChannel = 24 }},
		{"unsigned", func(f *StreamFormat) { f.SignedInteger = false }},
		{"bad frame stride", func(f *StreamFormat) { f.BytesPerFrame = 8 }},
		{"bad packet stride", func(f *StreamFormat) { f.BytesPerPacket = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewStreamFormat(44100)
			tt.modify(&f)
			if err := f.Validate(); err == nil {
				t.Errorf("expected validation error for %+v", f)
			}
		})
	}
}

func TestBytesAsInt16(t *testing.T) {
	buf := make([]byte, 8)
	samples := BytesAsInt16(buf)
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(samples))
	}

	samples[0] = 0x1234
	samples[3] = -1

	// Little-endian layout, shared memory
	if buf[0] != 0x34 || buf[1] != 0x12 {
		t.Errorf("expected 34 12, got %02x %02x", buf[0], buf[1])
	}
	if buf[6] != 0xFF || buf[7] != 0xFF {
		t.Errorf("expected ff ff, got %02x %02x", buf[6], buf[7])
	}

	if BytesAsInt16(nil) != nil {
		t.Error("expected nil for empty buffer")
	}
}

func TestFloat32ToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"full scale", 1.0, 32767},
		{"half", 0.5, 16383},
		{"negative full scale", -1.0, -32767},
		{"clip high", 2.0, 32767},
		{"clip low", -2.0, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Float32ToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestClampInt16(t *testing.T) {
	tests := []struct {
		input    int32
		expected int16
	}{
		{0, 0},
		{1000, 1000},
		{40000, 32767},
		{-40000, -32768},
	}

	for _, tt := range tests {
		if got := ClampInt16(tt.input); got != tt.expected {
			t.Errorf("ClampInt16(%d): expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}
