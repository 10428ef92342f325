// ABOUTME: Malgo-based default output unit
// ABOUTME: Uses miniaudio via malgo; the device data callback drives the render callback
package unit

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/gen2brain/malgo"
)

func init() {
	system.Add(malgoComponent{})
}

type malgoComponent struct{}

func (malgoComponent) Description() Description {
	return Description{
		Type:         TypeOutput,
		SubType:      SubTypeDefaultOutput,
		Manufacturer: ManufacturerBuiltin,
	}
}

func (malgoComponent) NewInstance() (Unit, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return &malgoUnit{malgoCtx: ctx}, nil
}

// malgoUnit plays through the system default playback device
type malgoUnit struct {
	mu       sync.Mutex
	state    lifecycle
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	renderer renderer
}

func (m *malgoUnit) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.initialize()
}

func (m *malgoUnit) SetStreamFormat(format audio.StreamFormat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.state.setFormat(format); err != nil {
		return err
	}

	// A new format needs a new device
	m.closeDevice()
	return nil
}

func (m *malgoUnit) SetRenderCallback(fn RenderFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.disposed {
		return ErrDisposed
	}
	m.renderer.set(fn)
	return nil
}

func (m *malgoUnit) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.state.canStart(); err != nil {
		return err
	}
	if m.state.running {
		return nil
	}

	if m.device == nil {
		deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
		deviceConfig.Playback.Format = malgo.FormatS16
		deviceConfig.Playback.Channels = uint32(m.state.format.Channels)
		deviceConfig.SampleRate = uint32(m.state.format.SampleRate)
		deviceConfig.Alsa.NoMMap = 1

		onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.renderer.render(audio.BytesAsInt16(pOutputSample), int(frameCount))
		}

		device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
			Data: onSamples,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize playback device: %w", err)
		}
		m.device = device
	}

	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	m.state.running = true

	log.Printf("Audio output started: %s (malgo)", m.state.format)
	return nil
}

func (m *malgoUnit) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.running || m.device == nil {
		return nil
	}
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	m.state.running = false
	return nil
}

func (m *malgoUnit) Uninitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.running {
		return ErrRunning
	}
	m.closeDevice()
	m.state.initialized = false
	return nil
}

func (m *malgoUnit) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.disposed {
		return nil
	}
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.state.running = false
	}
	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	m.state.disposed = true
	return nil
}

// closeDevice releases a stopped device (must hold m.mu)
func (m *malgoUnit) closeDevice() {
	if m.device != nil && !m.state.running {
		m.device.Uninit()
		m.device = nil
	}
}
