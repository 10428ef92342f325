// ABOUTME: Output unit interfaces and component registry
// ABOUTME: Describes components, units and the render callback contract
package unit

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
)

// ComponentType classifies what a component does
type ComponentType string

const (
	TypeOutput      ComponentType = "auou"
	TypeMusicDevice ComponentType = "aumu"
	TypeMixer       ComponentType = "aumx"
)

// Output subtypes
const (
	SubTypeDefaultOutput = "def "
	SubTypeRemoteIO      = "rioc"
	SubTypeHALOutput     = "ahal"
)

// ManufacturerBuiltin tags the components shipped with this module
const ManufacturerBuiltin = "tchA"

var (
	ErrNotInitialized = errors.New("unit not initialized")
	ErrNoFormat       = errors.New("unit has no stream format")
	ErrRunning        = errors.New("unit is running")
	ErrDisposed       = errors.New("unit disposed")
)

// Description identifies a component. Empty fields match anything when
// used as a search key.
type Description struct {
	Type         ComponentType
	SubType      string
	Manufacturer string
}

// Matches reports whether d satisfies the search key want
func (d Description) Matches(want Description) bool {
	if want.Type != "" && want.Type != d.Type {
		return false
	}
	if want.SubType != "" && want.SubType != d.SubType {
		return false
	}
	if want.Manufacturer != "" && want.Manufacturer != d.Manufacturer {
		return false
	}
	return true
}

// RenderFunc fills out with frames interleaved stereo frames.
//
// It runs on the backend's audio thread and must not block, allocate or
// perform I/O. len(out) is always at least frames*2.
type RenderFunc func(out []int16, frames int)

// Unit is one instantiated output component
type Unit interface {
	Initialize() error
	Uninitialize() error

	// SetStreamFormat sets the format the render callback produces
	SetStreamFormat(format audio.StreamFormat) error

	// SetRenderCallback installs fn; nil removes the callback and the unit
	// renders silence
	SetRenderCallback(fn RenderFunc) error

	Start() error

	// Stop halts the audio thread. Stopping a unit that is not running is
	// not an error.
	Stop() error

	// Dispose releases the instance; it cannot be used afterwards
	Dispose() error
}

// Component is a class of unit that can be instantiated
type Component interface {
	Description() Description
	NewInstance() (Unit, error)
}

// Provider finds components
type Provider interface {
	// FindNext returns the first component after prev matching desc, or nil.
	// Pass a nil prev to start from the beginning.
	FindNext(prev Component, desc Description) Component
}

// Registry is an ordered Provider
type Registry struct {
	mu         sync.RWMutex
	components []Component
}

// Add appends a component to the search order
func (r *Registry) Add(c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = append(r.components, c)
}

// FindNext implements Provider
func (r *Registry) FindNext(prev Component, desc Description) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if prev != nil {
		for i, c := range r.components {
			if c == prev {
				start = i + 1
				break
			}
		}
	}

	for _, c := range r.components[start:] {
		if c.Description().Matches(desc) {
			return c
		}
	}
	return nil
}

var system = &Registry{}

// System returns the provider holding the backends compiled into this binary
func System() Provider {
	return system
}

// DefaultOutputSubType is the output subtype for the running platform:
// remote IO on mobile, the default output device elsewhere.
func DefaultOutputSubType() string {
	switch runtime.GOOS {
	case "ios", "android":
		return SubTypeRemoteIO
	default:
		return SubTypeDefaultOutput
	}
}

// OutputSubType maps a device name to an output subtype. "" picks the
// platform default; unknown names are used as a raw subtype code.
func OutputSubType(device string) string {
	switch device {
	case "":
		return DefaultOutputSubType()
	case "default":
		return SubTypeDefaultOutput
	case "remoteio":
		return SubTypeRemoteIO
	case "hal", "portaudio":
		return SubTypeHALOutput
	default:
		return device
	}
}

// renderer holds the installed callback so the audio thread can read it
// without taking the control-side lock
type renderer struct {
	fn atomic.Pointer[RenderFunc]
}

func (r *renderer) set(fn RenderFunc) {
	if fn == nil {
		r.fn.Store(nil)
		return
	}
	r.fn.Store(&fn)
}

func (r *renderer) render(out []int16, frames int) {
	if fn := r.fn.Load(); fn != nil {
		(*fn)(out, frames)
		return
	}
	clear(out)
}

// lifecycle tracks the control-side state common to every backend.
// Callers hold their own lock around it.
type lifecycle struct {
	initialized bool
	running     bool
	disposed    bool
	format      audio.StreamFormat
	hasFormat   bool
}

func (l *lifecycle) initialize() error {
	if l.disposed {
		return ErrDisposed
	}
	l.initialized = true
	return nil
}

func (l *lifecycle) setFormat(format audio.StreamFormat) error {
	if l.disposed {
		return ErrDisposed
	}
	if l.running {
		return ErrRunning
	}
	if err := format.Validate(); err != nil {
		return err
	}
	l.format = format
	l.hasFormat = true
	return nil
}

// canStart reports why the unit may not start yet
func (l *lifecycle) canStart() error {
	switch {
	case l.disposed:
		return ErrDisposed
	case !l.initialized:
		return ErrNotInitialized
	case !l.hasFormat:
		return ErrNoFormat
	}
	return nil
}
