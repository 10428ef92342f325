// ABOUTME: Driver registration and selection package
// ABOUTME: Defines the Driver capability set, driver parameters and the factory registry
// Package driver lets a host pick its audio backends by name at startup.
//
// Every backend implements the Driver capability set {Start, Stop, Name}.
// Backends are described by a Factory (type, name, priority, description,
// constructor) and registered with a Registry. The host then selects a
// driver either by an explicit "name:param=value,param=value" spec or, when
// no name is given, by trying every registered driver in priority order.
//
// Example:
//
//	reg := driver.NewRegistry()
//	reg.Register(sound.Factory(mixer, unit.System()))
//
//	d, err := reg.Select(driver.TypeSound, "cocoa_touch:hz=48000")
//	if err != nil {
//	    log.Fatalf("no sound driver: %v", err)
//	}
//	defer d.Stop()
package driver
