// ABOUTME: Synthesizer configuration and defaults
// ABOUTME: Holds rate, frame cadence, watermarks and backend preferences
package synth

import (
	"fmt"
	"math"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio/output"
)

const (
	// DefaultSampleRate is the reference output rate
	DefaultSampleRate = 44100

	// DefaultTargetFPS is the scheduler tick rate
	DefaultTargetFPS = 60

	// DefaultFrequency is the initial tone (A4)
	DefaultFrequency = 440.0

	// DefaultAmplitude leaves headroom against clipping
	DefaultAmplitude = 0.9

	// DefaultLowWatermark: generate more audio when the backlog falls below this
	DefaultLowWatermark = 300 * time.Millisecond

	// DefaultBufferCapacity: the backlog never grows past this
	DefaultBufferCapacity = output.BufferCapacity
)

// Watermark holds the backlog thresholds used for backpressure
type Watermark struct {
	Low      time.Duration
	Capacity time.Duration
}

// Config holds synthesizer configuration
type Config struct {
	// SampleRate in Hz (default: 44100)
	SampleRate int

	// TargetFPS is the number of scheduler ticks per second (default: 60)
	TargetFPS int

	// Frequency is the initial tone in Hz (default: 440)
	Frequency float64

	// Watermark overrides the backlog thresholds (default: 300ms / 500ms)
	Watermark Watermark

	// Backends lists output backends by name in priority order
	// (default: output.DefaultBackends). The null backend is always tried last.
	Backends []string

	// Candidates replaces Backends with explicit constructors
	Candidates []output.Candidate

	// InitTimeout bounds each backend's initialization (default: 3s)
	InitTimeout time.Duration

	// Realtime requests elevated OS scheduling priority for the audio
	// thread. Best effort: failure is logged and ignored.
	Realtime bool

	// OnTick, if set, is called at the start of every scheduler tick on the
	// audio thread. It must return quickly and must not call Start or Stop
	// on the synthesizer directly; both wait for the audio thread. Call them
	// from a new goroutine instead.
	OnTick func(time.Time)
}

// withDefaults returns a copy of c with zero fields filled in
func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.TargetFPS == 0 {
		c.TargetFPS = DefaultTargetFPS
	}
	if c.Frequency == 0 {
		c.Frequency = DefaultFrequency
	}
	if c.Watermark.Low == 0 {
		c.Watermark.Low = DefaultLowWatermark
	}
	if c.Watermark.Capacity == 0 {
		c.Watermark.Capacity = DefaultBufferCapacity
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = output.DefaultInitTimeout
	}
	return c
}

// Validate checks the invariants the scheduler relies on
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.TargetFPS <= 0 {
		return fmt.Errorf("%w: target fps must be positive, got %d", ErrInvalidConfig, c.TargetFPS)
	}
	if c.SampleRate/c.TargetFPS < 1 {
		return fmt.Errorf("%w: %d fps leaves no samples per frame at %dHz", ErrInvalidConfig, c.TargetFPS, c.SampleRate)
	}
	if err := validFrequency(c.Frequency); err != nil {
		return err
	}
	if c.Watermark.Low <= 0 {
		return fmt.Errorf("%w: low watermark must be positive", ErrInvalidConfig)
	}
	if c.Watermark.Low >= c.Watermark.Capacity {
		return fmt.Errorf("%w: low watermark %v must be below capacity %v",
			ErrInvalidConfig, c.Watermark.Low, c.Watermark.Capacity)
	}
	if c.Watermark.Capacity > output.BufferCapacity {
		return fmt.Errorf("%w: capacity %v exceeds output buffer %v",
			ErrInvalidConfig, c.Watermark.Capacity, output.BufferCapacity)
	}
	if c.InitTimeout < 0 {
		return fmt.Errorf("%w: init timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// FramePeriod returns the target duration of one scheduler tick
func (c Config) FramePeriod() time.Duration {
	return time.Second / time.Duration(c.TargetFPS)
}

// FrameSamples returns the number of samples generated per tick
func (c Config) FrameSamples() int {
	return c.SampleRate / c.TargetFPS
}

func validFrequency(hz float64) error {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, hz)
	}
	return nil
}
