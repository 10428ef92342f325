// ABOUTME: Host configuration file
// ABOUTME: YAML settings for driver selection, songs, effects and volume
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultFile is read when no -config flag is given and the file exists
const DefaultFile = "touchaudio.yaml"

type Config struct {
	// Driver specs in "name:key=value,key" form; empty picks by priority
	SoundDriver string `yaml:"sound_driver"`
	MusicDriver string `yaml:"music_driver"`

	// OutputDevice picks the output backend for both drivers: default,
	// remoteio, hal, or a raw subtype code. Empty uses the platform default.
	OutputDevice string `yaml:"output_device"`

	SoundFont string   `yaml:"soundfont"`
	MusicDir  string   `yaml:"music_dir"`
	Playlist  []string `yaml:"playlist,flow"`
	Volume    int      `yaml:"volume"`

	Effects []string `yaml:"effects"`
	Tone    float64  `yaml:"tone_hz"`

	PollInterval time.Duration `yaml:"poll_interval"`
	LogFile      string        `yaml:"log_file"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		SoundDriver:  "cocoa_touch",
		MusicDriver:  "cocoa_touch",
		MusicDir:     ".",
		Volume:       127,
		PollInterval: 250 * time.Millisecond,
		LogFile:      "touchaudio.log",
	}
}

// Load reads path over the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	contents, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling yaml file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Volume < 0 || c.Volume > 127 {
		return fmt.Errorf("volume out of range: %d (0-127)", c.Volume)
	}
	if c.Tone < 0 {
		return fmt.Errorf("invalid tone frequency: %v", c.Tone)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval: %v", c.PollInterval)
	}
	return nil
}
