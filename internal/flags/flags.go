// Package flags holds opt-in features read from the flags section of the
// config file. A flag that is absent or unknown is off.
package flags

import (
	"maps"
	"slices"
	"strings"

	"github.com/zjrosen/treelights/internal/log"
)

const (
	// FlagMouse enables clicking the switch. Mouse capture stops the
	// terminal's own text selection, so it is off unless asked for.
	FlagMouse = "mouse"

	// FlagRemember saves the final mode on exit, as --remember does.
	FlagRemember = "remember"
)

// Known lists every flag the program reads.
func Known() []string {
	return []string{FlagMouse, FlagRemember}
}

// Registry is a read-only set of flag values.
type Registry struct {
	values map[string]bool
}

// New copies values into a Registry. Names are matched case-insensitively.
func New(values map[string]bool) *Registry {
	r := &Registry{values: make(map[string]bool, len(values))}
	for name, on := range values {
		r.values[strings.ToLower(name)] = on
	}
	if unknown := r.Unknown(); len(unknown) > 0 {
		log.Warn(log.CatConfig, "Ignoring unknown feature flags", "flags", strings.Join(unknown, ","))
	}
	log.Debug(log.CatConfig, "Feature flags", "flags", r.values)
	return r
}

// Enabled reports whether name is set to true. A nil Registry has every
// flag off.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.values[strings.ToLower(name)]
}

// Unknown returns the configured names that no feature reads, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	known := Known()
	var out []string
	for name := range r.values {
		if !slices.Contains(known, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// All returns a copy of the configured values.
func (r *Registry) All() map[string]bool {
	out := make(map[string]bool)
	if r != nil {
		maps.Copy(out, r.values)
	}
	return out
}
