//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string { return "portaudio" }

// Initialize always fails without the portaudio build tag
func (p *PortAudio) Initialize(format audio.Format) error {
	return fmt.Errorf("%w: PortAudio support not enabled (build with -tags portaudio)", ErrBackendUnavailable)
}

// Start is unsupported
func (p *PortAudio) Start() error { return ErrNotInitialized }

// Stop is a no-op
func (p *PortAudio) Stop() error { return nil }

// Enqueue is unsupported
func (p *PortAudio) Enqueue(frame audio.Frame) error { return ErrNotStarted }

// BufferedDuration is always zero
func (p *PortAudio) BufferedDuration() time.Duration { return 0 }

// Close is a no-op
func (p *PortAudio) Close() error { return nil }
