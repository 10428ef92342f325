// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts 16-bit interleaved PCM between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r := resample.New(22050, 44100, 2)
//	out := make([]int16, r.OutputSamplesNeeded(len(in)))
//	n := r.Resample(in, out)
package resample
