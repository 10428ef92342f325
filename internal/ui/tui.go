// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the command channel back to the host
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Command is a user action forwarded to the host
type Command int

const (
	CmdVolume Command = iota
	CmdNext
	CmdStop
	CmdTone
	CmdEffect
)

// ControlMsg carries a command and, for CmdVolume, the new volume
type ControlMsg struct {
	Command Command
	Volume  int
}

// Controls holds channels for control communication
type Controls struct {
	Commands chan ControlMsg
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan ControlMsg, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Controls, volume int) Model {
	return Model{
		volume:   volume,
		state:    "idle",
		controls: ctrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(ctrl *Controls, volume int) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl, volume), tea.WithAltScreen())
	return p, nil
}
