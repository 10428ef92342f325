// ABOUTME: Processing graph of the software sequencer
// ABOUTME: Synth node renders MIDI events, output node delivers PCM and carries volume
package sequencer

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/Resonate-Protocol/touchaudio/pkg/audio/unit"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// renderBlock is the largest slice rendered between event dispatches
const renderBlock = 64

// SubTypeSoftSynth identifies the SoundFont synth node
const SubTypeSoftSynth = "msyn"

// synthesizer is the part of *meltysynth.Synthesizer the graph drives
type synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
	Render(left []float32, right []float32)
	NoteOffAll(immediate bool)
	Reset()
}

type softGraph struct {
	tb    *Soft
	score *score

	mu          sync.Mutex
	nodes       []unit.Description
	initialized bool
	synth       synthesizer
	out         unit.Unit
	rate        int

	volume   atomic.Uint32 // float32 bits
	running  atomic.Bool
	position atomic.Uint64 // float64 bits, beats

	// Owned by the render thread while running, by the control side otherwise
	frames      int64
	next        int
	left, right []float32
}

func newGraph(tb *Soft, sc *score) *softGraph {
	g := &softGraph{tb: tb, score: sc}
	g.volume.Store(math.Float32bits(1))
	return g
}

func (g *softGraph) Open() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodes != nil {
		return nil
	}
	g.nodes = []unit.Description{
		{Type: unit.TypeMusicDevice, SubType: SubTypeSoftSynth, Manufacturer: unit.ManufacturerBuiltin},
		{Type: unit.TypeOutput, SubType: g.tb.outputSubType()},
	}
	return nil
}

func (g *softGraph) Initialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodes == nil {
		return ErrGraphNotOpen
	}
	if g.initialized {
		return nil
	}

	rate := g.tb.sampleRate()
	sf, err := g.tb.soundFont()
	if err != nil {
		return err
	}

	synth, err := meltysynth.NewSynthesizer(sf, meltysynth.NewSynthesizerSettings(int32(rate)))
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	out, err := g.tb.openOutput(g.nodes[len(g.nodes)-1], rate, g.render)
	if err != nil {
		return err
	}

	g.synth = synth
	g.out = out
	g.rate = rate
	g.left = make([]float32, renderBlock)
	g.right = make([]float32, renderBlock)
	g.initialized = true
	return nil
}

func (g *softGraph) NodeCount() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodes == nil {
		return 0, ErrGraphNotOpen
	}
	return len(g.nodes), nil
}

func (g *softGraph) Node(index int) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if index < 0 || index >= len(g.nodes) {
		return 0, fmt.Errorf("%w: index %d", ErrInvalidNode, index)
	}
	return Node(index), nil
}

func (g *softGraph) NodeInfo(node Node) (unit.Description, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node < 0 || int(node) >= len(g.nodes) {
		return unit.Description{}, fmt.Errorf("%w: %d", ErrInvalidNode, node)
	}
	return g.nodes[node], nil
}

func (g *softGraph) SetParameter(node Node, param Param, value float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node < 0 || int(node) >= len(g.nodes) {
		return fmt.Errorf("%w: %d", ErrInvalidNode, node)
	}
	if param != ParamVolume || g.nodes[node].Type != unit.TypeOutput {
		return fmt.Errorf("%w: %d on %s node", ErrInvalidParameter, param, g.nodes[node].Type)
	}

	value = min(max(value, 0), 1)
	g.volume.Store(math.Float32bits(value))
	return nil
}

// Volume returns the output node's current volume parameter
func (g *softGraph) Volume() float32 {
	return math.Float32frombits(g.volume.Load())
}

func (g *softGraph) preroll() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.initialized {
		return ErrGraphNotInitialized
	}
	if err := g.halt(); err != nil {
		return err
	}

	g.synth.Reset()
	g.frames = 0
	g.next = 0
	g.position.Store(0)
	return nil
}

func (g *softGraph) start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.initialized {
		return ErrGraphNotInitialized
	}

	g.running.Store(true)
	if err := g.out.Start(); err != nil {
		g.running.Store(false)
		return fmt.Errorf("failed to start output node: %w", err)
	}
	return nil
}

func (g *softGraph) stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.initialized {
		return nil
	}
	return g.halt()
}

// halt stops the output and silences held notes (must hold g.mu)
func (g *softGraph) halt() error {
	if !g.running.Load() {
		return nil
	}
	g.running.Store(false)
	if err := g.out.Stop(); err != nil {
		return fmt.Errorf("failed to stop output node: %w", err)
	}
	g.synth.NoteOffAll(true)
	return nil
}

func (g *softGraph) beat() float64 {
	return math.Float64frombits(g.position.Load())
}

func (g *softGraph) dispose() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var err error
	if g.initialized {
		if herr := g.halt(); herr != nil {
			err = herr
		}
		if derr := g.out.Dispose(); derr != nil && err == nil {
			err = fmt.Errorf("failed to dispose output node: %w", derr)
		}
	}

	g.initialized = false
	g.synth = nil
	g.out = nil
	g.nodes = nil
	return err
}

// render is the output node's render callback
func (g *softGraph) render(out []int16, frames int) {
	if !g.running.Load() {
		clear(out)
		return
	}

	gain := math.Float32frombits(g.volume.Load())

	for done := 0; done < frames; {
		n := min(frames-done, renderBlock)
		g.dispatch(g.score.beatAt(g.elapsed()))

		left, right := g.left[:n], g.right[:n]
		g.synth.Render(left, right)

		o := out[done*2 : (done+n)*2]
		for i := 0; i < n; i++ {
			o[2*i] = audio.Float32ToInt16(left[i] * gain)
			o[2*i+1] = audio.Float32ToInt16(right[i] * gain)
		}

		done += n
		g.frames += int64(n)
	}

	g.position.Store(math.Float64bits(g.score.beatAt(g.elapsed())))
}

// elapsed is the playback time in seconds
func (g *softGraph) elapsed() float64 {
	return float64(g.frames) / float64(g.rate)
}

// dispatch sends every event due at or before beat to the synth
func (g *softGraph) dispatch(beat float64) {
	events := g.score.events
	for g.next < len(events) && events[g.next].beat <= beat {
		ev := events[g.next]
		g.synth.ProcessMidiMessage(int32(ev.status&0x0F), int32(ev.status&0xF0), int32(ev.data1), int32(ev.data2))
		g.next++
	}
}
