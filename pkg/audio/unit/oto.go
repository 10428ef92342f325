// ABOUTME: Oto-based remote IO output unit
// ABOUTME: oto pulls PCM through io.Reader; each Read becomes one render callback
package unit

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

func init() {
	system.Add(otoComponent{})
}

// oto only allows one context per process, so every unit shares it
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

func sharedOtoContext(format audio.StreamFormat) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != format.SampleRate || otoChannels != format.Channels {
			return nil, fmt.Errorf("oto context already running at %dHz %dch, cannot switch to %s",
				otoRate, otoChannels, format)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
		return otoCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   20 * time.Millisecond,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoCtx = ctx
	otoRate = format.SampleRate
	otoChannels = format.Channels
	return otoCtx, nil
}

type otoComponent struct{}

func (otoComponent) Description() Description {
	return Description{
		Type:         TypeOutput,
		SubType:      SubTypeRemoteIO,
		Manufacturer: ManufacturerBuiltin,
	}
}

func (otoComponent) NewInstance() (Unit, error) {
	return &otoUnit{}, nil
}

// otoUnit feeds an oto player from the render callback
type otoUnit struct {
	mu       sync.Mutex
	state    lifecycle
	player   *oto.Player
	renderer renderer
}

// Read is called by oto's mixing goroutine
func (o *otoUnit) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	n := frames * 4
	o.renderer.render(audio.BytesAsInt16(p[:n]), frames)
	return n, nil
}

func (o *otoUnit) Initialize() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.initialize()
}

func (o *otoUnit) SetStreamFormat(format audio.StreamFormat) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.setFormat(format)
}

func (o *otoUnit) SetRenderCallback(fn RenderFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.disposed {
		return ErrDisposed
	}
	o.renderer.set(fn)
	return nil
}

func (o *otoUnit) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.state.canStart(); err != nil {
		return err
	}
	if o.state.running {
		return nil
	}

	if o.player == nil {
		ctx, err := sharedOtoContext(o.state.format)
		if err != nil {
			return err
		}
		o.player = ctx.NewPlayer(o)
	}

	o.player.Play()
	o.state.running = true

	log.Printf("Audio output started: %s (oto)", o.state.format)
	return nil
}

func (o *otoUnit) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.running || o.player == nil {
		return nil
	}
	o.player.Pause()
	o.state.running = false
	return nil
}

func (o *otoUnit) Uninitialize() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.running {
		return ErrRunning
	}
	o.closePlayer()
	o.state.initialized = false
	return nil
}

func (o *otoUnit) Dispose() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.disposed {
		return nil
	}
	if o.player != nil && o.state.running {
		o.player.Pause()
		o.state.running = false
	}
	o.closePlayer()
	o.state.disposed = true
	return nil
}

// closePlayer must hold o.mu
func (o *otoUnit) closePlayer() {
	if o.player == nil {
		return
	}
	if err := o.player.Close(); err != nil {
		log.Printf("Warning: oto player close error: %v", err)
	}
	o.player = nil
}
