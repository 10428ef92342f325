// ABOUTME: Tests for host wiring helpers
// ABOUTME: Checks how the output device is folded into the sound driver spec
package main

import "testing"

func TestWithDevice(t *testing.T) {
	tests := []struct {
		spec   string
		device string
		want   string
	}{
		{"cocoa_touch", "", "cocoa_touch"},
		{"cocoa_touch", "hal", "cocoa_touch:device=hal"},
		{"cocoa_touch:hz=22050", "hal", "cocoa_touch:hz=22050,device=hal"},
		{"cocoa_touch:device=default", "hal", "cocoa_touch:device=default"},
		{"", "hal", ":device=hal"},
	}

	for _, tt := range tests {
		if got := withDevice(tt.spec, tt.device); got != tt.want {
			t.Errorf("withDevice(%q, %q) = %q, want %q", tt.spec, tt.device, got, tt.want)
		}
	}
}
