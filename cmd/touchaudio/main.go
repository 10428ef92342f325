// ABOUTME: Entry point for the touchaudio jukebox
// ABOUTME: Parses CLI flags, selects the sound and music drivers and runs the TUI
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Resonate-Protocol/touchaudio/internal/app"
	"github.com/Resonate-Protocol/touchaudio/internal/config"
	"github.com/Resonate-Protocol/touchaudio/internal/mixer"
	"github.com/Resonate-Protocol/touchaudio/internal/songs"
	"github.com/Resonate-Protocol/touchaudio/internal/ui"
	"github.com/Resonate-Protocol/touchaudio/internal/version"
	"github.com/Resonate-Protocol/touchaudio/pkg/audio/unit"
	"github.com/Resonate-Protocol/touchaudio/pkg/driver"
	"github.com/Resonate-Protocol/touchaudio/pkg/music"
	"github.com/Resonate-Protocol/touchaudio/pkg/sequencer"
	"github.com/Resonate-Protocol/touchaudio/pkg/sound"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	configFile  = flag.String("config", "", "YAML config file (default: touchaudio.yaml if present)")
	soundSpec   = flag.String("s", "", "Sound driver spec, e.g. cocoa_touch:hz=22050")
	musicSpec   = flag.String("m", "", "Music driver spec")
	device      = flag.String("device", "", "Output device: default, remoteio, hal (needs -tags portaudio)")
	soundFont   = flag.String("soundfont", "", "SoundFont (.sf2) used by the MIDI synthesizer")
	musicDir    = flag.String("music-dir", "", "Directory holding the .mid files")
	volume      = flag.Int("volume", -1, "Initial music volume (0-127)")
	logFile     = flag.String("log-file", "", "Log file path")
	listDrivers = flag.Bool("list", false, "List available drivers and exit")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	mx := mixer.New()
	lib := songs.New(cfg.MusicDir)
	reg := driver.NewRegistry()

	if err := reg.Register(sound.Factory(mx, unit.System())); err != nil {
		log.Fatalf("Failed to register sound driver: %v", err)
	}

	// The synthesizer follows the sound driver's rate and device so both
	// can share one output backend
	soundDriverSpec := withDevice(cfg.SoundDriver, cfg.OutputDevice)
	_, soundParams := driver.ParseSpec(soundDriverSpec)
	outputDevice, _ := soundParams.Get("device")
	tb := sequencer.NewSoft(sequencer.Config{
		SoundFont:     cfg.SoundFont,
		SampleRate:    sound.SampleRate(soundParams),
		OutputSubType: unit.OutputSubType(outputDevice),
	})
	if err := reg.Register(music.Factory(tb, lib)); err != nil {
		log.Fatalf("Failed to register music driver: %v", err)
	}

	if *listDrivers {
		printDrivers(reg)
		return
	}

	soundDrv, err := reg.Select(driver.TypeSound, soundDriverSpec)
	if err != nil {
		log.Printf("Sound disabled: %v", err)
	}

	var effects app.Effects
	var samples []*mixer.Sample
	if soundDrv != nil {
		effects = mx
		for _, path := range cfg.Effects {
			s, err := mx.LoadFile(path)
			if err != nil {
				log.Printf("Skipping effect: %v", err)
				continue
			}
			samples = append(samples, s)
		}
	}

	var ctrl music.Controller
	musicDrv, err := reg.Select(driver.TypeMusic, cfg.MusicDriver)
	if err != nil {
		log.Printf("Music disabled: %v", err)
	} else if c, ok := musicDrv.(music.Controller); ok {
		ctrl = c
	} else {
		log.Printf("Music driver %s cannot play songs", musicDrv.Name())
	}

	playlist, err := lib.Playlist(cfg.Playlist)
	if err != nil {
		log.Printf("Empty playlist: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	controls := ui.NewControls()

	if useTUI {
		tuiProg, err = ui.Run(controls, cfg.Volume)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	status := ui.StatusMsg{Effects: len(samples)}
	if soundDrv == nil {
		status.Error = "sound disabled, see log"
	}
	if soundDrv != nil {
		status.SoundDriver = soundDrv.Name()
		status.SampleRate = mx.SampleRate()
	}
	if musicDrv != nil {
		status.MusicDriver = musicDrv.Name()
	}
	updateTUI(status)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jukebox := app.New(app.Config{
		Playlist:     playlist,
		Volume:       cfg.Volume,
		Tone:         cfg.Tone,
		PollInterval: cfg.PollInterval,
	}, ctrl, effects, samples, updateTUI)

	done := make(chan struct{})
	go func() {
		jukebox.Run(ctx, controls.Commands)
		close(done)
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-controls.Quit:
		log.Printf("Received quit signal from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
		if tuiProg != nil {
			tuiProg.Quit()
		}
	}

	cancel()
	<-done

	if musicDrv != nil {
		musicDrv.Stop()
	}
	if soundDrv != nil {
		soundDrv.Stop()
	}

	log.Printf("Stopped")
}

// loadConfig reads the config file and applies flags that were set
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	path := *configFile
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "s":
			cfg.SoundDriver = *soundSpec
		case "m":
			cfg.MusicDriver = *musicSpec
		case "device":
			cfg.OutputDevice = *device
		case "soundfont":
			cfg.SoundFont = *soundFont
		case "music-dir":
			cfg.MusicDir = *musicDir
		case "volume":
			cfg.Volume = *volume
		case "log-file":
			cfg.LogFile = *logFile
		}
	})

	return cfg, cfg.Validate()
}

// withDevice adds a device option to a sound driver spec that does not
// already name one
func withDevice(spec, device string) string {
	if device == "" {
		return spec
	}
	if _, params := driver.ParseSpec(spec); params.Has("device") {
		return spec
	}
	if strings.Contains(spec, ":") {
		return spec + ",device=" + device
	}
	return spec + ":device=" + device
}

func printDrivers(reg *driver.Registry) {
	for _, t := range []driver.Type{driver.TypeSound, driver.TypeMusic} {
		fmt.Printf("List of %s drivers:\n", t)
		for _, f := range reg.List(t) {
			fmt.Printf("%18s: %s\n", f.Name, f.Description)
		}
		fmt.Println()
	}
}
