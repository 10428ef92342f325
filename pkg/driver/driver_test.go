// ABOUTME: Tests for driver params and the factory registry
// ABOUTME: Covers spec parsing, priority ordering and start-failure fallback
package driver

import (
	"errors"
	"testing"
)

type stubDriver struct {
	name     string
	startErr error
	params   Params
	started  bool
}

func (d *stubDriver) Start(params Params) error {
	d.params = params
	if d.startErr != nil {
		return d.startErr
	}
	d.started = true
	return nil
}

func (d *stubDriver) Stop()        { d.started = false }
func (d *stubDriver) Name() string { return d.name }

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec   string
		name   string
		params Params
	}{
		{"", "", nil},
		{"cocoa_touch", "cocoa_touch", nil},
		{"cocoa_touch:hz=22050", "cocoa_touch", Params{"hz=22050"}},
		{"null:hz=48000, quiet", "null", Params{"hz=48000", "quiet"}},
	}

	for _, tt := range tests {
		name, params := ParseSpec(tt.spec)
		if name != tt.name {
			t.Errorf("spec %q: expected name %q, got %q", tt.spec, tt.name, name)
		}
		if params.String() != tt.params.String() {
			t.Errorf("spec %q: expected params %q, got %q", tt.spec, tt.params, params)
		}
	}
}

func TestParamsGetInt(t *testing.T) {
	params := Params{"hz=22050", "bad=abc", "flag"}

	tests := []struct {
		name     string
		def      int
		expected int
	}{
		{"hz", 44100, 22050},
		{"missing", 44100, 44100},
		{"bad", 7, 7},
		{"flag", 3, 3},
	}

	for _, tt := range tests {
		if got := params.GetInt(tt.name, tt.def); got != tt.expected {
			t.Errorf("GetInt(%q, %d): expected %d, got %d", tt.name, tt.def, tt.expected, got)
		}
	}

	if !params.Has("flag") {
		t.Error("expected bare option to be present")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	f := Factory{Type: TypeSound, Name: "cocoa_touch", Priority: 10, New: func() Driver { return &stubDriver{} }}

	if err := reg.Register(f); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := reg.Register(f); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	// Same name under another type is fine
	f.Type = TypeMusic
	if err := reg.Register(f); err != nil {
		t.Errorf("register music driver failed: %v", err)
	}
}

func TestListOrdersByPriority(t *testing.T) {
	reg := NewRegistry()
	for _, f := range []Factory{
		{Type: TypeMusic, Name: "null", Priority: 0},
		{Type: TypeMusic, Name: "cocoa_touch", Priority: 10},
		{Type: TypeMusic, Name: "extmidi", Priority: 5},
		{Type: TypeSound, Name: "sdl", Priority: 20},
	} {
		f.New = func() Driver { return &stubDriver{} }
		if err := reg.Register(f); err != nil {
			t.Fatalf("register %s: %v", f.Name, err)
		}
	}

	list := reg.List(TypeMusic)
	want := []string{"cocoa_touch", "extmidi", "null"}
	if len(list) != len(want) {
		t.Fatalf("expected %d factories, got %d", len(want), len(list))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, list[i].Name)
		}
	}
}

func TestSelectByName(t *testing.T) {
	reg := NewRegistry()
	var built *stubDriver
	reg.Register(Factory{
		Type: TypeSound, Name: "cocoa_touch", Priority: 10,
		New: func() Driver { built = &stubDriver{name: "cocoa_touch"}; return built },
	})

	d, err := reg.Select(TypeSound, "cocoa_touch:hz=48000")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if d.Name() != "cocoa_touch" || !built.started {
		t.Error("expected cocoa_touch driver to be started")
	}
	if built.params.GetInt("hz", 0) != 48000 {
		t.Errorf("expected hz=48000 to reach driver, got %v", built.params)
	}

	if _, err := reg.Select(TypeSound, "missing"); err == nil {
		t.Error("expected unknown driver to fail")
	}
}

func TestSelectFallsBackByPriority(t *testing.T) {
	reg := NewRegistry()
	startErr := &StartError{Driver: "broken", Stage: "no device"}

	reg.Register(Factory{Type: TypeSound, Name: "broken", Priority: 20,
		New: func() Driver { return &stubDriver{name: "broken", startErr: startErr} }})
	reg.Register(Factory{Type: TypeSound, Name: "cocoa_touch", Priority: 10,
		New: func() Driver { return &stubDriver{name: "cocoa_touch"} }})
	reg.Register(Factory{Type: TypeSound, Name: "null", Priority: 0,
		New: func() Driver { return &stubDriver{name: "null"} }})

	d, err := reg.Select(TypeSound, "")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if d.Name() != "cocoa_touch" {
		t.Errorf("expected cocoa_touch after broken failed, got %s", d.Name())
	}
}

func TestSelectReportsAllFailures(t *testing.T) {
	reg := NewRegistry()
	startErr := &StartError{Driver: "cocoa_touch_s", Stage: "no output component found"}
	reg.Register(Factory{Type: TypeSound, Name: "cocoa_touch", Priority: 10,
		New: func() Driver { return &stubDriver{startErr: startErr} }})

	_, err := reg.Select(TypeSound, "")
	if err == nil {
		t.Fatal("expected Select to fail")
	}

	var se *StartError
	if !errors.As(err, &se) {
		t.Fatalf("expected StartError in chain, got %v", err)
	}
	if se.Stage != "no output component found" {
		t.Errorf("unexpected stage: %s", se.Stage)
	}
}

func TestStartErrorMessage(t *testing.T) {
	err := &StartError{Driver: "cocoa_touch_s", Stage: "Failed to start output: unit initialize", Err: errors.New("boom")}
	want := "cocoa_touch_s: Failed to start output: unit initialize: boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	bare := &StartError{Driver: "cocoa_touch_m", Stage: "Failed to create music player"}
	if bare.Error() != "cocoa_touch_m: Failed to create music player" {
		t.Errorf("unexpected message: %q", bare.Error())
	}
}
