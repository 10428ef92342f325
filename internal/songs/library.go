// ABOUTME: Song library backed by a music directory
// ABOUTME: Resolves songs to standard MIDI files and builds playlists
package songs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Resonate-Protocol/touchaudio/pkg/music"
)

// Library resolves songs against the files under Dir
type Library struct {
	Dir string
}

// New creates a library rooted at dir
func New(dir string) *Library {
	return &Library{Dir: dir}
}

// ResolveStandardMIDIFile returns the path of the song's MIDI file, or ""
// if the song has no playable file
func (l *Library) ResolveStandardMIDIFile(song music.Song) string {
	if song.Filename == "" || !isMIDI(song.Filename) {
		return ""
	}

	path := song.Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Dir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("songs: cannot stat %s: %v", path, err)
		}
		return ""
	}
	if info.IsDir() {
		return ""
	}
	return path
}

// Scan lists the MIDI files in the library directory as songs, ordered by
// file name
func (l *Library) Scan() ([]music.Song, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	var list []music.Song
	for _, e := range entries {
		if e.IsDir() || !isMIDI(e.Name()) {
			continue
		}
		list = append(list, music.Song{
			Name:     strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Filename: e.Name(),
			Track:    len(list) + 1,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Filename < list[j].Filename
	})
	for i := range list {
		list[i].Track = i + 1
	}
	return list, nil
}

// Playlist turns configured file names into songs, falling back to a
// directory scan when none are configured
func (l *Library) Playlist(files []string) ([]music.Song, error) {
	if len(files) == 0 {
		return l.Scan()
	}

	list := make([]music.Song, 0, len(files))
	for i, f := range files {
		list = append(list, music.Song{
			Name:     strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)),
			Filename: f,
			Track:    i + 1,
		})
	}
	return list, nil
}

func isMIDI(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mid", ".midi":
		return true
	default:
		return false
	}
}
