// ABOUTME: Tests for output unit discovery and the render path
// ABOUTME: Uses in-memory components; no audio device is opened
package unit

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
)

type memComponent struct {
	desc Description
}

func (c *memComponent) Description() Description   { return c.desc }
func (c *memComponent) NewInstance() (Unit, error) { return nil, errors.New("not instantiable") }

func TestDescriptionMatches(t *testing.T) {
	d := Description{Type: TypeOutput, SubType: SubTypeRemoteIO, Manufacturer: ManufacturerBuiltin}

	tests := []struct {
		name string
		want Description
		ok   bool
	}{
		{"wildcard", Description{}, true},
		{"type only", Description{Type: TypeOutput}, true},
		{"exact", d, true},
		{"wrong type", Description{Type: TypeMusicDevice}, false},
		{"wrong subtype", Description{Type: TypeOutput, SubType: SubTypeDefaultOutput}, false},
		{"wrong manufacturer", Description{Manufacturer: "appl"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Matches(tt.want); got != tt.ok {
				t.Errorf("expected %v, got %v", tt.ok, got)
			}
		})
	}
}

func TestRegistryFindNext(t *testing.T) {
	reg := &Registry{}
	synth := &memComponent{desc: Description{Type: TypeMusicDevice, SubType: "msyn"}}
	out1 := &memComponent{desc: Description{Type: TypeOutput, SubType: SubTypeDefaultOutput}}
	out2 := &memComponent{desc: Description{Type: TypeOutput, SubType: SubTypeHALOutput}}
	reg.Add(synth)
	reg.Add(out1)
	reg.Add(out2)

	want := Description{Type: TypeOutput}

	first := reg.FindNext(nil, want)
	if first != out1 {
		t.Fatalf("expected first output component, got %v", first)
	}

	second := reg.FindNext(first, want)
	if second != out2 {
		t.Fatalf("expected second output component, got %v", second)
	}

	if third := reg.FindNext(second, want); third != nil {
		t.Errorf("expected no more components, got %v", third)
	}

	if c := reg.FindNext(nil, Description{Type: TypeMixer}); c != nil {
		t.Errorf("expected no mixer component, got %v", c)
	}
}

func TestOutputSubType(t *testing.T) {
	tests := []struct {
		device string
		want   string
	}{
		{"", DefaultOutputSubType()},
		{"default", SubTypeDefaultOutput},
		{"remoteio", SubTypeRemoteIO},
		{"hal", SubTypeHALOutput},
		{"portaudio", SubTypeHALOutput},
		{"ahal", SubTypeHALOutput},
	}

	for _, tt := range tests {
		if got := OutputSubType(tt.device); got != tt.want {
			t.Errorf("OutputSubType(%q) = %q, want %q", tt.device, got, tt.want)
		}
	}
}

func TestSystemHasDefaultOutput(t *testing.T) {
	c := System().FindNext(nil, Description{Type: TypeOutput, SubType: SubTypeDefaultOutput})
	if c == nil {
		t.Fatal("expected a default output component to be registered")
	}
	if c.Description().Manufacturer != ManufacturerBuiltin {
		t.Errorf("unexpected manufacturer: %q", c.Description().Manufacturer)
	}

	if System().FindNext(nil, Description{Type: TypeOutput, SubType: SubTypeRemoteIO}) == nil {
		t.Error("expected a remote IO component to be registered")
	}
}

func TestRendererSilenceWithoutCallback(t *testing.T) {
	var r renderer
	out := []int16{1, 2, 3, 4}

	r.render(out, 2)
	for i, s := range out {
		if s != 0 {
			t.Errorf("sample %d: expected silence, got %d", i, s)
		}
	}
}

func TestRendererCallsCallback(t *testing.T) {
	var r renderer
	var gotFrames int
	r.set(func(out []int16, frames int) {
		gotFrames = frames
		for i := 0; i < frames*2; i++ {
			out[i] = 7
		}
	})

	out := make([]int16, 8)
	r.render(out, 4)
	if gotFrames != 4 {
		t.Errorf("expected 4 frames, got %d", gotFrames)
	}
	if out[7] != 7 {
		t.Errorf("expected callback output, got %d", out[7])
	}

	// Removing the callback goes back to silence
	r.set(nil)
	r.render(out, 4)
	if out[0] != 0 {
		t.Errorf("expected silence after removal, got %d", out[0])
	}
}

func TestLifecycle(t *testing.T) {
	var l lifecycle

	if err := l.canStart(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}

	if err := l.initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := l.canStart(); !errors.Is(err, ErrNoFormat) {
		t.Errorf("expected ErrNoFormat, got %v", err)
	}

	bad := audio.NewStreamFormat(44100)
	bad.Channels = 6
	if err := l.setFormat(bad); err == nil {
		t.Error("expected 6 channels to be rejected")
	}

	if err := l.setFormat(audio.NewStreamFormat(44100)); err != nil {
		t.Fatalf("setFormat: %v", err)
	}
	if err := l.canStart(); err != nil {
		t.Errorf("expected unit to be startable, got %v", err)
	}

	l.running = true
	if err := l.setFormat(audio.NewStreamFormat(48000)); !errors.Is(err, ErrRunning) {
		t.Errorf("expected ErrRunning, got %v", err)
	}

	l.running = false
	l.disposed = true
	if err := l.initialize(); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}
