// ABOUTME: Version information for the host application
// ABOUTME: Reported in logs and the TUI
package version

const (
	Version      = "0.1.0"
	Product      = "Touch Audio"
	Manufacturer = "Resonate"
)
