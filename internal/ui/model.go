// ABOUTME: Bubbletea model for the jukebox TUI
// ABOUTME: Defines display state and key handling
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MaxVolume matches the music driver's volume range
const MaxVolume = 127

var (
	playingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model represents the TUI state
type Model struct {
	// Drivers
	soundDriver string
	musicDriver string
	sampleRate  int

	// Song
	song  string
	track int
	total int
	state string

	// Controls
	volume int
	tone   bool

	// Effects
	effects int
	voices  int

	lastError string

	controls *Controls

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSong()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

// renderHeader renders the selected drivers
func (m Model) renderHeader() string {
	sound := m.soundDriver
	if sound == "" {
		sound = "none"
	}
	music := m.musicDriver
	if music == "" {
		music = "none"
	}

	return fmt.Sprintf(`┌─ Touch Audio ────────────────────────────────────────┐
│ Sound:  %-45s │
│ Music:  %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(fmt.Sprintf("%s (%dHz)", sound, m.sampleRate), 45), truncate(music, 45))
}

// renderSong renders the current song and playback state
func (m Model) renderSong() string {
	if m.song == "" {
		return "│ No song                                              │\n"
	}

	s := "│ Now Playing:                                         │\n"
	s += fmt.Sprintf("│   Song:  %-43s │\n", truncate(m.song, 43))
	s += fmt.Sprintf("│   Track: %-43s │\n", fmt.Sprintf("%d/%d", m.track, m.total))
	state := fmt.Sprintf("%-43s", m.state)
	if m.state == "playing" {
		state = playingStyle.Render(state)
	}
	s += fmt.Sprintf("│   State: %s │\n", state)
	return s
}

// renderControls renders volume, tone and effect status
func (m Model) renderControls() string {
	volumeBar := renderBar(m.volume, MaxVolume, 10)

	tone := "off"
	if m.tone {
		tone = "on"
	}

	s := fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %3d/%d%-21s │\n"+
		"│ Tone: %-3s  Effects: %d  Voices: %d%-18s │\n",
		volumeBar, m.volume, MaxVolume, "",
		tone, m.effects, m.voices, "")

	if m.lastError != "" {
		s += fmt.Sprintf("│ Error: %s │\n", errorStyle.Render(fmt.Sprintf("%-45s", truncate(m.lastError, 45))))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ ↑/↓:Volume  n:Next  s:Stop  t:Tone  e:Effect  q:Quit │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		if m.volume < MaxVolume {
			m.volume = min(m.volume+8, MaxVolume)
			m.send(ControlMsg{Command: CmdVolume, Volume: m.volume})
		}
	case "down":
		if m.volume > 0 {
			m.volume = max(m.volume-8, 0)
			m.send(ControlMsg{Command: CmdVolume, Volume: m.volume})
		}
	case "n":
		m.send(ControlMsg{Command: CmdNext})
	case "s":
		m.send(ControlMsg{Command: CmdStop})
	case "t":
		m.tone = !m.tone
		m.send(ControlMsg{Command: CmdTone})
	case "e":
		m.send(ControlMsg{Command: CmdEffect})
	}

	return m, nil
}

// send forwards a command without blocking the UI
func (m Model) send(c ControlMsg) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Commands <- c:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.SoundDriver != "" {
		m.soundDriver = msg.SoundDriver
		m.sampleRate = msg.SampleRate
	}
	if msg.MusicDriver != "" {
		m.musicDriver = msg.MusicDriver
	}
	if msg.Song != "" {
		m.song = msg.Song
		m.track = msg.Track
		m.total = msg.Total
	}
	if msg.Playing != nil {
		if *msg.Playing {
			m.state = "playing"
		} else {
			m.state = "stopped"
		}
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.Tone != nil {
		m.tone = *msg.Tone
	}
	if msg.Effects != 0 {
		m.effects = msg.Effects
	}
	if msg.Voices != nil {
		m.voices = *msg.Voices
	}
	if msg.Error != "" {
		m.lastError = msg.Error
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	SoundDriver string
	SampleRate  int
	MusicDriver string
	Song        string
	Track       int
	Total       int
	Playing     *bool
	Volume      *int
	Tone        *bool
	Effects     int
	Voices      *int
	Error       string
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	return bar.String()
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
