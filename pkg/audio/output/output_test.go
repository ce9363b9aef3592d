// ABOUTME: Audio output interface tests
// ABOUTME: Verifies every backend implements Output
package output

import (
	"testing"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

func TestBackendsImplementOutput(t *testing.T) {
	var _ Output = (*Pulse)(nil)
	var _ Output = (*Malgo)(nil)
	var _ Output = (*Oto)(nil)
	var _ Output = (*PortAudio)(nil)
	var _ Output = (*SDL)(nil)
	var _ Output = (*Null)(nil)

	var _ UnderrunReporter = (*Malgo)(nil)
	var _ UnderrunReporter = (*Pulse)(nil)
}

func TestBackendNames(t *testing.T) {
	for name, newFn := range registry {
		out := newFn()
		if out == nil {
			t.Fatalf("constructor for %s returned nil", name)
		}
		if out.Name() != name {
			t.Errorf("expected name %q, got %q", name, out.Name())
		}
	}
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name   string
		format audio.Format
		ok     bool
	}{
		{"mono16", audio.Mono16(44100), true},
		{"stereo", audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, false},
		{"24bit", audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 24}, false},
		{"zero rate", audio.Mono16(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFormat(tt.format)
			if (err == nil) != tt.ok {
				t.Errorf("checkFormat(%+v) = %v, want ok=%v", tt.format, err, tt.ok)
			}
		})
	}
}
