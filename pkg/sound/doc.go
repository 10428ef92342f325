// ABOUTME: Sound driver package
// ABOUTME: Streams mixer output through a real-time output unit
// Package sound implements the cocoa_touch sound driver.
//
// The driver owns one output unit. On Start it initializes the Mixer at the
// configured rate ("hz", default 44100), finds and configures the platform
// output unit and installs a render callback; from then on the unit's audio
// thread pulls every buffer straight from Mixer.Mix.
//
// Example:
//
//	reg := driver.NewRegistry()
//	reg.Register(sound.Factory(mixer, unit.System()))
//	d, err := reg.Select(driver.TypeSound, "cocoa_touch:hz=22050")
package sound
