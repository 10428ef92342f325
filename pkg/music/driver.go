// ABOUTME: Cocoa Touch MIDI driver
// ABOUTME: Player, sequence and graph lifecycle with volume and completion polling
package music

import (
	"fmt"
	"log"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio/unit"
	"github.com/Resonate-Protocol/touchaudio/pkg/driver"
	"github.com/Resonate-Protocol/touchaudio/pkg/sequencer"
)

const (
	// Name is the symbolic name the driver is registered under
	Name = "cocoa_touch"

	// Priority among music drivers
	Priority = 10

	// Description shown to the user by the host
	Description = "Cocoa Touch MIDI Driver"

	// TailPadding is added to the longest track so release and reverb
	// tails finish before the song counts as done
	TailPadding = 8

	// MaxVolume is the loudest driver volume
	MaxVolume = 127

	logPrefix = "cocoa_touch_m"
)

// StageNewPlayer is reported when the player cannot be created
const StageNewPlayer = "Failed to create music player"

// Song describes an entry of the host's music set
type Song struct {
	Name     string
	Filename string
	Track    int
}

func (s Song) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Filename
}

// FileResolver maps a song to a standard MIDI file on disk
type FileResolver interface {
	// ResolveStandardMIDIFile returns the file path, or "" when the song
	// has nothing to play
	ResolveStandardMIDIFile(song Song) string
}

// Controller is the playback surface the host drives
type Controller interface {
	driver.Driver
	PlaySong(song Song)
	StopSong()
	IsSongPlaying() bool
	SetVolume(vol uint8)
}

// State is the lifecycle state of the driver
type State int

const (
	StateUninitialized State = iota
	StateIdle
	StateLoaded
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Driver plays one song at a time
type Driver struct {
	toolbox sequencer.Toolbox
	files   FileResolver

	player   sequencer.Player
	sequence sequencer.Sequence
	graph    sequencer.Graph

	length  float64 // beats, including TailPadding
	playing bool
	volume  uint8
	state   State
}

// New creates a music driver at full volume
func New(toolbox sequencer.Toolbox, files FileResolver) *Driver {
	return &Driver{
		toolbox: toolbox,
		files:   files,
		volume:  MaxVolume,
	}
}

// Factory describes the driver for registration with a driver.Registry
func Factory(toolbox sequencer.Toolbox, files FileResolver) driver.Factory {
	return driver.Factory{
		Type:        driver.TypeMusic,
		Name:        Name,
		Priority:    Priority,
		Description: Description,
		New: func() driver.Driver {
			return New(toolbox, files)
		},
	}
}

func (d *Driver) Name() string {
	return Name
}

// State returns the current lifecycle state
func (d *Driver) State() State {
	return d.state
}

// Volume returns the stored driver volume, 0 to MaxVolume
func (d *Driver) Volume() uint8 {
	return d.volume
}

// SequenceLength returns the length of the loaded song in beats,
// TailPadding included
func (d *Driver) SequenceLength() float64 {
	return d.length
}

// Start creates the player. Params are not used.
func (d *Driver) Start(params driver.Params) error {
	if d.player != nil {
		return nil
	}

	player, err := d.toolbox.NewPlayer()
	if err != nil {
		return &driver.StartError{Driver: logPrefix, Stage: StageNewPlayer, Err: err}
	}

	d.player = player
	d.state = StateIdle
	return nil
}

// Stop disposes the player and any loaded sequence
func (d *Driver) Stop() {
	if d.player != nil {
		if err := d.player.Dispose(); err != nil {
			log.Printf("%s: failed to dispose player: %v", logPrefix, err)
		}
		d.player = nil
	}

	d.disposeSequence()
	d.playing = false
	d.state = StateUninitialized
}

// PlaySong loads and starts song, replacing whatever was loaded. Failures
// are logged; a song that resolves to no file leaves the driver untouched.
func (d *Driver) PlaySong(song Song) {
	path := d.files.ResolveStandardMIDIFile(song)
	if path == "" {
		log.Printf("%s: nothing to play for '%s'", logPrefix, song)
		return
	}
	if d.player == nil {
		log.Printf("%s: not started, ignoring '%s'", logPrefix, song)
		return
	}

	log.Printf("%s: trying to play '%s'", logPrefix, path)

	d.StopSong()
	d.disposeSequence()

	if err := d.load(path); err != nil {
		log.Printf("%s: %v", logPrefix, err)
		d.disposeSequence()
		d.state = StateIdle
		return
	}

	d.state = StateLoaded
	d.applyVolume()

	if err := d.startPlayback(); err != nil {
		log.Printf("%s: %v", logPrefix, err)
		return
	}

	d.playing = true
	d.state = StatePlaying
	log.Printf("%s: playing '%s'", logPrefix, path)
}

// load creates a sequence for path and brings its graph up
func (d *Driver) load(path string) error {
	seq, err := d.toolbox.NewSequence()
	if err != nil {
		return fmt.Errorf("%w: new sequence: %v", driver.ErrLoad, err)
	}
	d.sequence = seq

	if err := seq.LoadFile(path); err != nil {
		return fmt.Errorf("%w: %s: %v", driver.ErrLoad, path, err)
	}

	graph, err := seq.Graph()
	if err != nil {
		return fmt.Errorf("%w: %v", driver.ErrGraphInit, err)
	}
	if err := graph.Open(); err != nil {
		return fmt.Errorf("%w: open: %v", driver.ErrGraphInit, err)
	}
	if err := graph.Initialize(); err != nil {
		return fmt.Errorf("%w: initialize: %v", driver.ErrGraphInit, err)
	}
	d.graph = graph

	length, err := longestTrack(seq)
	if err != nil {
		return fmt.Errorf("%w: %v", driver.ErrLoad, err)
	}
	d.length = length + TailPadding
	return nil
}

func (d *Driver) startPlayback() error {
	if err := d.player.SetSequence(d.sequence); err != nil {
		return fmt.Errorf("%w: set sequence: %v", driver.ErrPlaybackStart, err)
	}
	if err := d.player.Preroll(); err != nil {
		return fmt.Errorf("%w: preroll: %v", driver.ErrPlaybackStart, err)
	}
	if err := d.player.Start(); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrPlaybackStart, err)
	}
	return nil
}

// StopSong halts the transport and detaches the sequence. The sequence
// stays loaded.
func (d *Driver) StopSong() {
	if d.player == nil {
		return
	}

	if err := d.player.Stop(); err != nil {
		log.Printf("%s: failed to stop player: %v", logPrefix, err)
	}
	if err := d.player.SetSequence(nil); err != nil {
		log.Printf("%s: failed to detach sequence: %v", logPrefix, err)
	}

	d.playing = false
	d.state = StateIdle
}

// IsSongPlaying reports whether a started song has not yet run past its
// end. The playing flag itself is only cleared by StopSong.
func (d *Driver) IsSongPlaying() bool {
	if !d.playing || d.player == nil {
		return false
	}

	pos, err := d.player.Time()
	if err != nil {
		log.Printf("%s: failed to read player time: %v", logPrefix, err)
		return false
	}
	return pos < d.length
}

// SetVolume stores vol and applies it to the loaded song, if any
func (d *Driver) SetVolume(vol uint8) {
	d.volume = min(vol, MaxVolume)
	if d.graph != nil {
		d.applyVolume()
	}
}

func (d *Driver) applyVolume() {
	node, err := findOutputNode(d.graph)
	if err != nil {
		log.Printf("%s: volume not applied: %v", logPrefix, err)
		return
	}

	if err := d.graph.SetParameter(node, sequencer.ParamVolume, float32(d.volume)/MaxVolume); err != nil {
		log.Printf("%s: failed to set volume: %v", logPrefix, err)
	}
}

func (d *Driver) disposeSequence() {
	if d.sequence != nil {
		if err := d.sequence.Dispose(); err != nil {
			log.Printf("%s: failed to dispose sequence: %v", logPrefix, err)
		}
	}
	d.sequence = nil
	d.graph = nil
	d.length = 0
}

// findOutputNode returns the first node, in index order, whose component
// type is an output. Only that node carries the volume.
func findOutputNode(g sequencer.Graph) (sequencer.Node, error) {
	count, err := g.NodeCount()
	if err != nil {
		return 0, err
	}

	for i := 0; i < count; i++ {
		node, err := g.Node(i)
		if err != nil {
			return 0, err
		}
		info, err := g.NodeInfo(node)
		if err != nil {
			return 0, err
		}
		if info.Type == unit.TypeOutput {
			return node, nil
		}
	}
	return 0, driver.ErrOutputNodeNotFound
}

// longestTrack returns the maximum track length of seq in beats
func longestTrack(seq sequencer.Sequence) (float64, error) {
	count, err := seq.TrackCount()
	if err != nil {
		return 0, err
	}

	var longest float64
	for i := 0; i < count; i++ {
		track, err := seq.Track(i)
		if err != nil {
			return 0, err
		}
		length, err := track.Length()
		if err != nil {
			return 0, err
		}
		longest = max(longest, length)
	}
	return longest, nil
}
