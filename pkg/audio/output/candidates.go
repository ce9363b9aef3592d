// ABOUTME: Registry of known output backends
// ABOUTME: Builds ordered candidate lists that always end with the null backend
package output

import (
	"fmt"
	"sort"
	"strings"
)

// NullBackend is the name of the always-available fallback
const NullBackend = "null"

// DefaultBackends is the preferred backend order
var DefaultBackends = []string{"pulse", "malgo", "oto", "portaudio", "sdl", NullBackend}

var registry = map[string]func() Output{
	"pulse":     NewPulse,
	"malgo":     NewMalgo,
	"oto":       NewOto,
	"portaudio": NewPortAudio,
	"sdl":       NewSDL,
	NullBackend: NewNull,
}

// Backends returns the names of all known backends, sorted
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidates builds an ordered candidate list from backend names. An empty
// list selects DefaultBackends. The null backend is appended when the list
// does not already end with it, so selection always has a working fallback.
func Candidates(names []string) ([]Candidate, error) {
	if len(names) == 0 {
		names = DefaultBackends
	}

	candidates := make([]Candidate, 0, len(names)+1)
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		newFn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown audio backend %q (known: %s)", raw, strings.Join(Backends(), ", "))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		candidates = append(candidates, Candidate{Name: name, New: newFn})
	}

	if len(candidates) == 0 || candidates[len(candidates)-1].Name != NullBackend {
		// drop an earlier null so it only appears once, at the end
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.Name != NullBackend {
				filtered = append(filtered, c)
			}
		}
		candidates = append(filtered, Candidate{Name: NullBackend, New: NewNull})
	}

	return candidates, nil
}

// ParseBackends splits a comma-separated backend list
func ParseBackends(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
