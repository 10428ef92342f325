// ABOUTME: Jukebox application orchestration
// ABOUTME: Plays the playlist through the music driver and handles TUI commands
package app

import (
	"context"
	"log"
	"time"

	"github.com/Resonate-Protocol/touchaudio/internal/mixer"
	"github.com/Resonate-Protocol/touchaudio/internal/ui"
	"github.com/Resonate-Protocol/touchaudio/pkg/music"
)

// Effects is the part of the mixer the jukebox drives
type Effects interface {
	Play(s *mixer.Sample, volume int) bool
	SetTone(freq float64)
	Active() int
}

// Config holds jukebox configuration
type Config struct {
	Playlist     []music.Song
	Volume       int
	Tone         float64 // frequency used when the tone is toggled on
	PollInterval time.Duration
}

// Jukebox advances through the playlist. Every method runs on the goroutine
// that calls Run, which keeps calls into the music driver serialized.
type Jukebox struct {
	config  Config
	music   music.Controller
	effects Effects
	samples []*mixer.Sample
	status  func(ui.StatusMsg)

	next     int
	current  int
	stopped  bool
	failures int
	tone     bool
	effect   int
}

// New creates a jukebox. ctrl and effects may be nil when the matching
// driver is not running.
func New(config Config, ctrl music.Controller, effects Effects, samples []*mixer.Sample, status func(ui.StatusMsg)) *Jukebox {
	if config.PollInterval <= 0 {
		config.PollInterval = 250 * time.Millisecond
	}
	if config.Tone <= 0 {
		config.Tone = mixer.DefaultToneFrequency
	}
	if status == nil {
		status = func(ui.StatusMsg) {}
	}

	return &Jukebox{
		config:  config,
		music:   ctrl,
		effects: effects,
		samples: samples,
		status:  status,
		current: -1,
	}
}

// Run plays until ctx is cancelled
func (j *Jukebox) Run(ctx context.Context, commands <-chan ui.ControlMsg) {
	j.setVolume(j.config.Volume)
	j.playNext()

	ticker := time.NewTicker(j.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if j.music != nil {
				j.music.StopSong()
			}
			return
		case cmd := <-commands:
			j.handle(cmd)
		case <-ticker.C:
			j.poll()
		}
	}
}

// handle processes one TUI command
func (j *Jukebox) handle(cmd ui.ControlMsg) {
	switch cmd.Command {
	case ui.CmdVolume:
		j.setVolume(cmd.Volume)
	case ui.CmdNext:
		j.failures = 0
		j.playNext()
	case ui.CmdStop:
		j.stop()
	case ui.CmdTone:
		j.toggleTone()
	case ui.CmdEffect:
		j.playEffect()
	}
}

// poll advances to the next song once the current one has finished
func (j *Jukebox) poll() {
	if j.effects != nil {
		voices := j.effects.Active()
		j.status(ui.StatusMsg{Voices: &voices})
	}

	if j.music == nil || j.stopped || j.current < 0 {
		return
	}
	if j.music.IsSongPlaying() {
		j.failures = 0
		return
	}

	log.Printf("Song finished: %s", j.config.Playlist[j.current])
	j.playNext()
}

func (j *Jukebox) playNext() {
	if j.music == nil || len(j.config.Playlist) == 0 {
		return
	}

	// Give up after a full round of songs that would not start
	if j.failures >= len(j.config.Playlist) {
		log.Printf("No song in the playlist could be played")
		j.stop()
		j.status(ui.StatusMsg{Error: "no song in the playlist could be played"})
		return
	}

	song := j.config.Playlist[j.next]
	j.current = j.next
	j.next = (j.next + 1) % len(j.config.Playlist)
	j.stopped = false

	j.music.PlaySong(song)

	playing := j.music.IsSongPlaying()
	if !playing {
		j.failures++
	}
	j.status(ui.StatusMsg{
		Song:    song.String(),
		Track:   j.current + 1,
		Total:   len(j.config.Playlist),
		Playing: &playing,
	})
}

func (j *Jukebox) stop() {
	j.stopped = true
	if j.music != nil {
		j.music.StopSong()
	}
	playing := false
	j.status(ui.StatusMsg{Playing: &playing})
}

func (j *Jukebox) setVolume(vol int) {
	vol = min(max(vol, 0), music.MaxVolume)
	if j.music != nil {
		j.music.SetVolume(uint8(vol))
	}
	j.status(ui.StatusMsg{Volume: &vol})
}

func (j *Jukebox) toggleTone() {
	if j.effects == nil {
		return
	}
	j.tone = !j.tone
	if j.tone {
		j.effects.SetTone(j.config.Tone)
	} else {
		j.effects.SetTone(0)
	}
	tone := j.tone
	j.status(ui.StatusMsg{Tone: &tone})
}

// playEffect plays the loaded effects in turn
func (j *Jukebox) playEffect() {
	if j.effects == nil || len(j.samples) == 0 {
		return
	}

	s := j.samples[j.effect]
	j.effect = (j.effect + 1) % len(j.samples)
	if !j.effects.Play(s, mixer.MaxVolume) {
		log.Printf("No free voice for effect %s", s.Name)
	}
}
