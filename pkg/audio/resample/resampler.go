// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to bring decoded effects to the output stream rate
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to output sample rate using linear interpolation.
// Both slices hold interleaved samples; the number of samples written is returned.
func (r *Resampler) Resample(input []int16, output []int16) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)

		// Need two frames to interpolate between
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := input[inputIdx*r.channels+ch]
			s2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = int16(float64(s1)*(1.0-frac) + float64(s2)*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Convert resamples a complete buffer in one pass
func Convert(input []int16, inputRate, outputRate, channels int) []int16 {
	if inputRate == outputRate || len(input) == 0 {
		return input
	}

	r := New(inputRate, outputRate, channels)
	out := make([]int16, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, out)
	return out[:n]
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}
