// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines StreamFormat and the 16-bit PCM sample helpers
// Package audio provides the PCM types shared by output units, the sound
// driver and the music sequencer.
//
// This package defines:
//   - StreamFormat: the stream descriptor negotiated with an output unit
//     (sample rate, channel count, bit depth, frame and packet strides)
//
// It also provides allocation-free helpers for the real-time path:
//   - viewing a device byte buffer as interleaved int16 samples
//   - float32 ↔ int16 conversion with clipping
//
// Example:
//
//	format := audio.NewStreamFormat(44100)
//	// format.Channels == 2, format.BitsPerChannel == 16
//	// format.BytesPerFrame == 4
package audio
