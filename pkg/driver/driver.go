// ABOUTME: Driver capability interface and parameter parsing
// ABOUTME: Mirrors the host's "name:key=value,key" driver spec format
package driver

import (
	"strconv"
	"strings"
)

// Type is the kind of subsystem a driver serves
type Type int

const (
	TypeSound Type = iota
	TypeMusic
)

func (t Type) String() string {
	switch t {
	case TypeSound:
		return "sound"
	case TypeMusic:
		return "music"
	default:
		return "unknown"
	}
}

// Driver is the capability set every backend provides
type Driver interface {
	// Start brings the backend up. A non-nil error means the driver is
	// unusable until Start is retried.
	Start(params Params) error

	// Stop tears the backend down. It is best effort and never fails.
	Stop()

	// Name returns the symbolic name the driver is registered under
	Name() string
}

// Params holds driver options as "key=value" or bare "key" entries
type Params []string

// ParseParams splits a comma separated option list
func ParseParams(s string) Params {
	if s == "" {
		return nil
	}

	var params Params
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			params = append(params, p)
		}
	}
	return params
}

// ParseSpec splits a "name:key=value,key" driver spec into name and params
func ParseSpec(spec string) (string, Params) {
	name, opts, _ := strings.Cut(spec, ":")
	return strings.TrimSpace(name), ParseParams(opts)
}

// Get returns the value of the named option. Bare options report an
// empty value and ok=true.
func (p Params) Get(name string) (string, bool) {
	for _, entry := range p {
		key, value, _ := strings.Cut(entry, "=")
		if key == name {
			return value, true
		}
	}
	return "", false
}

// Has reports whether the option is present at all
func (p Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// GetInt returns the named option as an integer, or def when the option is
// absent or not a number
func (p Params) GetInt(name string, def int) int {
	value, ok := p.Get(name)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

func (p Params) String() string {
	return strings.Join(p, ",")
}
