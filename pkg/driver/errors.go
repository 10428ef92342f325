// ABOUTME: Error taxonomy shared by the sound and music drivers
// ABOUTME: StartError is surfaced to the host, the sentinels are logged and absorbed
package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad means a song file was missing, unreadable or no sequence could be created
	ErrLoad = errors.New("song could not be loaded")

	// ErrGraphInit means the processing graph of a loaded song could not be initialized
	ErrGraphInit = errors.New("processing graph could not be initialized")

	// ErrPlaybackStart means the player refused to start a loaded song
	ErrPlaybackStart = errors.New("playback could not be started")

	// ErrOutputNodeNotFound means the graph has no output node to apply volume to
	ErrOutputNodeNotFound = errors.New("no output node in processing graph")
)

// StartError reports which stage of bringing a driver up failed
type StartError struct {
	Driver string // log prefix of the failing driver, e.g. "cocoa_touch_s"
	Stage  string // human-readable description of the failed step
	Err    error  // underlying cause, may be nil
}

func (e *StartError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Driver, e.Stage)
	}
	return fmt.Sprintf("%s: %s: %v", e.Driver, e.Stage, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
