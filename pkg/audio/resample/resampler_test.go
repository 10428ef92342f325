// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling between sample rates
package resample

import (
	"testing"
)

func TestNew(t *testing.T) {
	r := New(22050, 44100, 2)

	if r.inputRate != 22050 || r.outputRate != 44100 || r.channels != 2 {
		t.Errorf("unexpected resampler: %+v", r)
	}
	if r.ratio != 0.5 {
		t.Errorf("expected ratio 0.5, got %v", r.ratio)
	}
}

func TestResampleUpsampling(t *testing.T) {
	r := New(22050, 44100, 2)

	// Ramp on the left channel, constant on the right
	input := make([]int16, 200)
	for i := 0; i < 100; i++ {
		input[i*2] = int16(i * 100)
		input[i*2+1] = 1000
	}

	output := make([]int16, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	if n < 390 || n > 400 {
		t.Errorf("expected ~400 samples, got %d", n)
	}

	// Halfway between the first two input frames
	if output[2] != 50 {
		t.Errorf("expected interpolated 50, got %d", output[2])
	}
	for i := 1; i < n; i += 2 {
		if output[i] != 1000 {
			t.Fatalf("expected constant right channel, got %d at %d", output[i], i)
		}
	}
}

func TestResampleDownsampling(t *testing.T) {
	r := New(48000, 44100, 2)

	input := make([]int16, 200)
	for i := range input {
		input[i] = int16(i * 100)
	}

	expected := r.OutputSamplesNeeded(len(input))
	output := make([]int16, expected)
	n := r.Resample(input, output)

	if n < expected-10 || n > expected {
		t.Errorf("expected ~%d samples, got %d", expected, n)
	}
}

func TestConvertSameRate(t *testing.T) {
	input := []int16{1, 2, 3, 4}
	out := Convert(input, 44100, 44100, 2)
	if &out[0] != &input[0] {
		t.Error("expected same-rate conversion to return the input")
	}
}

func TestConvertEmpty(t *testing.T) {
	if out := Convert(nil, 22050, 44100, 2); len(out) != 0 {
		t.Errorf("expected empty output, got %d samples", len(out))
	}
}
