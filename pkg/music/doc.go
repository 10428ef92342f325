// ABOUTME: Music driver package
// ABOUTME: Plays standard MIDI files through a sequencer toolbox
// Package music implements the cocoa_touch MIDI driver.
//
// The driver owns one player and at most one loaded sequence. PlaySong
// replaces the sequence wholesale, opens its processing graph, applies the
// driver volume to the graph's output node and starts the transport.
// Completion is not signalled: callers poll IsSongPlaying, which reports
// false once the transport passes the longest track plus TailPadding beats.
//
// All methods must be called from a single goroutine.
package music
