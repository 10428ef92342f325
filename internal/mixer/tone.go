// ABOUTME: Sine test tone for checking the output path
// ABOUTME: Generated on the audio thread at half scale
package mixer

import "math"

// DefaultToneFrequency is A4
const DefaultToneFrequency = 440.0

func (m *Mixer) mixTone(out []int16, frames int, freq float64, master int32) {
	rate := float64(m.rate.Load())

	for i := 0; i < frames; i++ {
		t := float64(m.tonePos+uint64(i)) / rate
		sample := int32(math.Sin(2*math.Pi*freq*t) * 32767.0 * 0.5) // 50% volume
		sample = sample * master / MaxVolume

		out[i*2] = int16(sample)
		out[i*2+1] = int16(sample)
	}

	m.tonePos += uint64(frames)
}
