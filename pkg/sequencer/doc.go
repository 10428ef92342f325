// ABOUTME: MIDI sequencer package: player, sequence and processing graph
// ABOUTME: Abstracts the native sequencer the music driver drives
// Package sequencer provides the sequencing capability used by the music driver.
//
// The model follows a classic native sequencer toolbox:
//   - Sequence: the tracks of one standard MIDI file, in beats
//   - Graph: the processing graph derived from a sequence; a chain of nodes
//     ending in exactly one output node
//   - Player: the transport that plays a sequence through its graph
//
// Soft is the built-in Toolbox. It parses files with gomidi's smf package,
// renders notes with a meltysynth SoundFont synthesizer and delivers the
// result through an output unit from package unit.
//
// Example:
//
//	tb := sequencer.NewSoft(sequencer.Config{SoundFont: "gm.sf2"})
//	player, _ := tb.NewPlayer()
//	seq, _ := tb.NewSequence()
//	_ = seq.LoadFile("song.mid")
//	graph, _ := seq.Graph()
//	_ = graph.Open()
//	_ = graph.Initialize()
//	_ = player.SetSequence(seq)
//	_ = player.Preroll()
//	_ = player.Start()
package sequencer
