// ABOUTME: Sequencer capability interfaces
// ABOUTME: Toolbox, Player, Sequence, Track, Graph and node parameters
package sequencer

import (
	"errors"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio/unit"
)

var (
	ErrNoSequence          = errors.New("player has no sequence")
	ErrEmptySequence       = errors.New("sequence has no file loaded")
	ErrGraphNotOpen        = errors.New("graph not open")
	ErrGraphNotInitialized = errors.New("graph not initialized")
	ErrInvalidNode         = errors.New("invalid graph node")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrInvalidTrack        = errors.New("invalid track index")
	ErrDisposed            = errors.New("object disposed")
)

// Node identifies a node within one graph
type Node int32

// Param identifies a node parameter
type Param uint32

// ParamVolume is the global output volume of an output node, 0.0 to 1.0
const ParamVolume Param = 14

// Toolbox creates players and sequences
type Toolbox interface {
	NewPlayer() (Player, error)
	NewSequence() (Sequence, error)
}

// Player is the transport of one sequence at a time
type Player interface {
	// SetSequence attaches seq; nil detaches the current sequence
	SetSequence(seq Sequence) error
	Preroll() error
	Start() error
	Stop() error

	// Time is the current transport position in beats
	Time() (float64, error)

	Dispose() error
}

// Sequence holds the tracks of a loaded song
type Sequence interface {
	LoadFile(path string) error

	// Graph returns the processing graph derived from the loaded file
	Graph() (Graph, error)

	TrackCount() (int, error)
	Track(index int) (Track, error)
	Dispose() error
}

// Track is one track of a sequence
type Track interface {
	// Length is the track length in beats
	Length() (float64, error)
}

// Graph is the chain of processing nodes that renders a sequence
type Graph interface {
	Open() error
	Initialize() error
	NodeCount() (int, error)
	Node(index int) (Node, error)
	NodeInfo(node Node) (unit.Description, error)
	SetParameter(node Node, param Param, value float32) error
}
