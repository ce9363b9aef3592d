//go:build !sdl

// ABOUTME: SDL2 stub when library not available
// ABOUTME: Provides compile-time placeholder when SDL2 is not installed
package output

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// SDL output implementation (stub)
type SDL struct{}

// NewSDL creates a new SDL output
func NewSDL() Output {
	return &SDL{}
}

// Name returns the backend name
func (s *SDL) Name() string { return "sdl" }

// Initialize always fails without the sdl build tag
func (s *SDL) Initialize(format audio.Format) error {
	return fmt.Errorf("%w: SDL support not enabled (build with -tags sdl)", ErrBackendUnavailable)
}

// Start is unsupported
func (s *SDL) Start() error { return ErrNotInitialized }

// Stop is a no-op
func (s *SDL) Stop() error { return nil }

// Enqueue is unsupported
func (s *SDL) Enqueue(frame audio.Frame) error { return ErrNotStarted }

// BufferedDuration is always zero
func (s *SDL) BufferedDuration() time.Duration { return 0 }

// Close is a no-op
func (s *SDL) Close() error { return nil }
