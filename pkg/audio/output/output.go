// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for buffered playback backends
package output

import (
	"errors"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// BufferCapacity is the most unplayed audio any backend will hold
const BufferCapacity = 500 * time.Millisecond

var (
	// ErrBackendUnavailable is returned when a backend cannot be initialized
	ErrBackendUnavailable = errors.New("audio backend unavailable")

	// ErrNoBackend is returned when no candidate backend could be initialized
	ErrNoBackend = errors.New("no audio backend could be initialized")

	// ErrUnsupportedFormat is returned when a backend cannot play the requested format
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNotStarted is returned when samples are enqueued before Start
	ErrNotStarted = errors.New("output not started")

	// ErrNotInitialized is returned when Start is called before Initialize
	ErrNotInitialized = errors.New("output not initialized")

	// ErrBufferFull is returned when an enqueue would exceed BufferCapacity
	ErrBufferFull = errors.New("output buffer full")

	// ErrInitTimeout is returned when a backend takes too long to initialize
	ErrInitTimeout = errors.New("audio backend initialization timed out")
)

// Output represents a buffered audio playback backend
type Output interface {
	// Name identifies the backend (e.g. "pulse", "malgo", "null")
	Name() string

	// Initialize configures the backend for the given PCM format
	Initialize(format audio.Format) error

	// Start begins playback of queued samples
	Start() error

	// Stop ends playback. Safe to call more than once.
	Stop() error

	// Enqueue appends a frame to the playback buffer
	Enqueue(frame audio.Frame) error

	// BufferedDuration reports how much queued audio has not been played yet
	BufferedDuration() time.Duration

	// Close releases backend resources
	Close() error
}

// UnderrunReporter is implemented by outputs that count playback underruns
type UnderrunReporter interface {
	Underruns() int64
}

// checkFormat rejects anything other than mono 16-bit PCM at a positive rate
func checkFormat(format audio.Format) error {
	if format.SampleRate <= 0 || format.Channels != 1 || format.BitDepth != 16 {
		return ErrUnsupportedFormat
	}
	return nil
}
