// ABOUTME: Software sequencer toolbox
// ABOUTME: Players and sequences backed by smf, meltysynth and an output unit
package sequencer

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/Resonate-Protocol/touchaudio/pkg/audio/unit"
	"github.com/google/uuid"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// Config holds software sequencer configuration
type Config struct {
	// SoundFont is the path of the .sf2 file used by the synth node
	SoundFont string

	// SampleRate of the output node (default: 44100)
	SampleRate int

	// Units provides the output node (default: unit.System())
	Units unit.Provider

	// OutputSubType selects the output component (default: platform output)
	OutputSubType string
}

// Soft is the built-in Toolbox
type Soft struct {
	config Config

	mu        sync.Mutex
	soundfont *meltysynth.SoundFont
}

// NewSoft creates a software sequencer toolbox
func NewSoft(config Config) *Soft {
	if config.SampleRate == 0 {
		config.SampleRate = audio.DefaultSampleRate
	}
	if config.Units == nil {
		config.Units = unit.System()
	}
	if config.OutputSubType == "" {
		config.OutputSubType = unit.DefaultOutputSubType()
	}
	return &Soft{config: config}
}

func (s *Soft) NewPlayer() (Player, error) {
	p := &softPlayer{id: uuid.New()}
	log.Printf("Created music player %s", p.id)
	return p, nil
}

func (s *Soft) NewSequence() (Sequence, error) {
	return &softSequence{id: uuid.New(), tb: s}, nil
}

func (s *Soft) sampleRate() int {
	return s.config.SampleRate
}

func (s *Soft) outputSubType() string {
	return s.config.OutputSubType
}

// soundFont loads the SoundFont once and shares it between graphs
func (s *Soft) soundFont() (*meltysynth.SoundFont, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.soundfont != nil {
		return s.soundfont, nil
	}
	if s.config.SoundFont == "" {
		return nil, fmt.Errorf("no SoundFont configured")
	}

	data, err := os.ReadFile(s.config.SoundFont)
	if err != nil {
		return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
	}

	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont: %w", err)
	}

	log.Printf("Loaded SoundFont %s", s.config.SoundFont)
	s.soundfont = sf
	return sf, nil
}

// openOutput instantiates and prepares the output node's unit
func (s *Soft) openOutput(desc unit.Description, rate int, render unit.RenderFunc) (unit.Unit, error) {
	comp := s.config.Units.FindNext(nil, desc)
	if comp == nil {
		return nil, fmt.Errorf("no output component matching %q", desc.SubType)
	}

	u, err := comp.NewInstance()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate output: %w", err)
	}

	setup := func() error {
		if err := u.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize output: %w", err)
		}
		if err := u.SetStreamFormat(audio.NewStreamFormat(rate)); err != nil {
			return fmt.Errorf("failed to set output format: %w", err)
		}
		if err := u.SetRenderCallback(render); err != nil {
			return fmt.Errorf("failed to set output render callback: %w", err)
		}
		return nil
	}

	if err := setup(); err != nil {
		if derr := u.Dispose(); derr != nil {
			log.Printf("Warning: output dispose error: %v", derr)
		}
		return nil, err
	}
	return u, nil
}

type softTrack struct {
	length float64
}

func (t softTrack) Length() (float64, error) {
	return t.length, nil
}

type softSequence struct {
	id       uuid.UUID
	tb       *Soft
	score    *score
	graph    *softGraph
	disposed bool
}

func (q *softSequence) LoadFile(path string) error {
	if q.disposed {
		return ErrDisposed
	}

	sc, err := readScore(path)
	if err != nil {
		return err
	}

	if q.graph != nil {
		if err := q.graph.dispose(); err != nil {
			log.Printf("Warning: sequence %s graph dispose error: %v", q.id, err)
		}
	}

	q.score = sc
	q.graph = newGraph(q.tb, sc)

	log.Printf("Sequence %s loaded %s: %d tracks, %d events", q.id, path, len(sc.lengths), len(sc.events))
	return nil
}

func (q *softSequence) Graph() (Graph, error) {
	if q.disposed {
		return nil, ErrDisposed
	}
	if q.graph == nil {
		return nil, ErrEmptySequence
	}
	return q.graph, nil
}

func (q *softSequence) TrackCount() (int, error) {
	if q.disposed {
		return 0, ErrDisposed
	}
	if q.score == nil {
		return 0, nil
	}
	return len(q.score.lengths), nil
}

func (q *softSequence) Track(index int) (Track, error) {
	if q.disposed {
		return nil, ErrDisposed
	}
	if q.score == nil || index < 0 || index >= len(q.score.lengths) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrack, index)
	}
	return softTrack{length: q.score.lengths[index]}, nil
}

func (q *softSequence) Dispose() error {
	if q.disposed {
		return nil
	}
	q.disposed = true

	var err error
	if q.graph != nil {
		err = q.graph.dispose()
		q.graph = nil
	}
	q.score = nil
	return err
}

type softPlayer struct {
	id       uuid.UUID
	seq      *softSequence
	disposed bool
}

func (p *softPlayer) SetSequence(seq Sequence) error {
	if p.disposed {
		return ErrDisposed
	}

	if p.seq != nil && p.seq.graph != nil {
		if err := p.seq.graph.stop(); err != nil {
			return err
		}
	}

	if seq == nil {
		p.seq = nil
		return nil
	}

	q, ok := seq.(*softSequence)
	if !ok {
		return fmt.Errorf("foreign sequence type %T", seq)
	}
	if q.disposed {
		return ErrDisposed
	}
	if q.graph == nil {
		return ErrEmptySequence
	}
	p.seq = q
	return nil
}

func (p *softPlayer) graph() (*softGraph, error) {
	if p.disposed {
		return nil, ErrDisposed
	}
	if p.seq == nil || p.seq.graph == nil {
		return nil, ErrNoSequence
	}
	return p.seq.graph, nil
}

func (p *softPlayer) Preroll() error {
	g, err := p.graph()
	if err != nil {
		return err
	}
	return g.preroll()
}

func (p *softPlayer) Start() error {
	g, err := p.graph()
	if err != nil {
		return err
	}
	return g.start()
}

func (p *softPlayer) Stop() error {
	if p.seq == nil || p.seq.graph == nil {
		return nil
	}
	return p.seq.graph.stop()
}

func (p *softPlayer) Time() (float64, error) {
	g, err := p.graph()
	if errors.Is(err, ErrNoSequence) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return g.beat(), nil
}

func (p *softPlayer) Dispose() error {
	if p.disposed {
		return nil
	}
	err := p.Stop()
	p.seq = nil
	p.disposed = true
	log.Printf("Disposed music player %s", p.id)
	return err
}
