// ABOUTME: Driver factory registry
// ABOUTME: Maps (type, name) to constructors and selects drivers by name or priority
package driver

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Factory describes how to build one driver
type Factory struct {
	Type        Type
	Name        string
	Priority    int // higher is tried first; 0 means "only when asked for by name"
	Description string
	New         func() Driver
}

// Registry holds the factories known to the host
type Registry struct {
	mu        sync.RWMutex
	factories []Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a factory. A (type, name) pair may only be registered once.
func (r *Registry) Register(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("driver factory has no name")
	}
	if f.New == nil {
		return fmt.Errorf("driver factory %s/%s has no constructor", f.Type, f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.factories {
		if existing.Type == f.Type && existing.Name == f.Name {
			return fmt.Errorf("duplicate %s driver: %s", f.Type, f.Name)
		}
	}

	r.factories = append(r.factories, f)
	return nil
}

// List returns the factories of a type, highest priority first
func (r *Registry) List(t Type) []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []Factory
	for _, f := range r.factories {
		if f.Type == t {
			list = append(list, f)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority > list[j].Priority
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Lookup finds a factory by type and name
func (r *Registry) Lookup(t Type, name string) (Factory, bool) {
	for _, f := range r.List(t) {
		if f.Name == name {
			return f, true
		}
	}
	return Factory{}, false
}

// Select builds and starts a driver from a "name:params" spec.
//
// With a name, only that driver is tried and its start error is returned.
// Without one, drivers are tried in priority order (skipping priority 0)
// and the first one that starts wins.
func (r *Registry) Select(t Type, spec string) (Driver, error) {
	name, params := ParseSpec(spec)

	if name != "" {
		f, ok := r.Lookup(t, name)
		if !ok {
			return nil, fmt.Errorf("unknown %s driver: %s", t, name)
		}

		d := f.New()
		if err := d.Start(params); err != nil {
			return nil, fmt.Errorf("unable to start %s driver %s: %w", t, name, err)
		}
		log.Printf("Successfully started %s driver %s", t, name)
		return d, nil
	}

	var errs []error
	for _, f := range r.List(t) {
		if f.Priority == 0 {
			continue
		}

		log.Printf("Probing %s driver %s", t, f.Name)
		d := f.New()
		if err := d.Start(params); err != nil {
			log.Printf("Probing %s driver %s failed with error: %v", t, f.Name, err)
			errs = append(errs, err)
			continue
		}

		log.Printf("Successfully probed %s driver %s", t, f.Name)
		return d, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("no %s driver available", t)
	}
	return nil, fmt.Errorf("no %s driver could be started: %w", t, errors.Join(errs...))
}
