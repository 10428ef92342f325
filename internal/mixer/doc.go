// Package mixer is the host's reference mixer for the sound driver.
//
// Effects are decoded and rate-converted up front; Mix only sums
// preloaded PCM, so it never blocks or allocates on the audio thread.
package mixer
