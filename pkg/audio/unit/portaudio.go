//go:build portaudio

// ABOUTME: PortAudio HAL output unit
// ABOUTME: Cross-platform output using PortAudio's callback stream
package unit

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

func init() {
	system.Add(portAudioComponent{})
}

type portAudioComponent struct{}

func (portAudioComponent) Description() Description {
	return Description{
		Type:         TypeOutput,
		SubType:      SubTypeHALOutput,
		Manufacturer: ManufacturerBuiltin,
	}
}

func (portAudioComponent) NewInstance() (Unit, error) {
	return &portAudioUnit{}, nil
}

type portAudioUnit struct {
	mu       sync.Mutex
	state    lifecycle
	stream   *portaudio.Stream
	renderer renderer
}

func (p *portAudioUnit) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.initialized {
		return nil
	}
	if err := p.state.initialize(); err != nil {
		return err
	}
	if err := portaudio.Initialize(); err != nil {
		p.state.initialized = false
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return nil
}

func (p *portAudioUnit) SetStreamFormat(format audio.StreamFormat) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.state.setFormat(format); err != nil {
		return err
	}
	p.closeStream()
	return nil
}

func (p *portAudioUnit) SetRenderCallback(fn RenderFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.disposed {
		return ErrDisposed
	}
	p.renderer.set(fn)
	return nil
}

func (p *portAudioUnit) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.state.canStart(); err != nil {
		return err
	}
	if p.state.running {
		return nil
	}

	if p.stream == nil {
		channels := p.state.format.Channels
		stream, err := portaudio.OpenDefaultStream(0, channels, float64(p.state.format.SampleRate), 0, func(out []int16) {
			p.renderer.render(out, len(out)/channels)
		})
		if err != nil {
			return fmt.Errorf("failed to open stream: %w", err)
		}
		p.stream = stream
	}

	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.state.running = true

	log.Printf("Audio output started: %s (portaudio)", p.state.format)
	return nil
}

func (p *portAudioUnit) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.running || p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	p.state.running = false
	return nil
}

func (p *portAudioUnit) Uninitialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.running {
		return ErrRunning
	}
	if !p.state.initialized {
		return nil
	}
	p.closeStream()
	p.state.initialized = false
	return portaudio.Terminate()
}

func (p *portAudioUnit) Dispose() error {
	p.mu.Lock()
	running, initialized := p.state.running, p.state.initialized
	p.mu.Unlock()

	if running {
		if err := p.Stop(); err != nil {
			log.Printf("Warning: portaudio stop error: %v", err)
		}
	}
	if initialized {
		if err := p.Uninitialize(); err != nil {
			log.Printf("Warning: portaudio terminate error: %v", err)
		}
	}

	p.mu.Lock()
	p.state.disposed = true
	p.mu.Unlock()
	return nil
}

// closeStream must hold p.mu
func (p *portAudioUnit) closeStream() {
	if p.stream == nil || p.state.running {
		return
	}
	if err := p.stream.Close(); err != nil {
		log.Printf("Warning: portaudio stream close error: %v", err)
	}
	p.stream = nil
}
