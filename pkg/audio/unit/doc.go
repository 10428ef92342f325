// ABOUTME: Output unit package for real-time audio delivery
// ABOUTME: Provides component discovery and callback-driven output units
// Package unit provides the native audio capability used by the drivers.
//
// A Provider is searched with a Description for a matching Component; the
// Component is instantiated into a Unit, which is initialized, given a
// StreamFormat and a RenderFunc, and started. From then on the backend's
// audio thread calls the RenderFunc whenever the device needs samples.
//
// Backends:
//   - miniaudio via malgo: the default output on desktop systems
//   - oto: the remote IO unit used on iOS and Android
//   - PortAudio: a HAL output, available when built with -tags portaudio
//
// Example:
//
//	comp := unit.System().FindNext(nil, unit.Description{
//	    Type:    unit.TypeOutput,
//	    SubType: unit.DefaultOutputSubType(),
//	})
//	u, err := comp.NewInstance()
//	err = u.Initialize()
//	err = u.SetStreamFormat(audio.NewStreamFormat(44100))
//	err = u.SetRenderCallback(func(out []int16, frames int) { ... })
//	err = u.Start()
package unit
