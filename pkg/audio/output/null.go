// ABOUTME: Null audio output that always initializes
// ABOUTME: Discards samples at real-time rate; the guaranteed last fallback
package output

import (
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// Null plays nothing but drains its queue against the wall clock, so the
// scheduler sees the same backpressure it would from a real device.
type Null struct {
	format  audio.Format
	now     func() time.Time
	started bool
	ready   bool

	// playhead is the wall-clock time at which everything queued so far
	// will have been "played"
	playhead time.Time
	played   int64

	mu sync.Mutex
}

// NewNull creates a new Null output
func NewNull() Output {
	return newNullWithClock(time.Now)
}

func newNullWithClock(now func() time.Time) *Null {
	return &Null{now: now}
}

// Name returns the backend name
func (n *Null) Name() string { return "null" }

// Initialize accepts the same mono 16-bit formats as the device backends
func (n *Null) Initialize(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.format = format
	n.ready = true
	n.started = false
	n.playhead = time.Time{}

	log.Printf("Audio output initialized: %dHz, %d channels (null, audio is discarded)",
		format.SampleRate, format.Channels)
	return nil
}

// Start begins the simulated playback clock
func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.ready {
		return ErrNotInitialized
	}
	if !n.started {
		n.started = true
		n.playhead = n.now()
	}
	return nil
}

// Stop halts the simulated playback and drops the queue
func (n *Null) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.started = false
	n.playhead = time.Time{}
	return nil
}

// Enqueue extends the playhead by the frame's duration
func (n *Null) Enqueue(frame audio.Frame) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return ErrNotStarted
	}

	now := n.now()
	if n.playhead.Before(now) {
		n.playhead = now
	}

	d := n.format.Duration(frame.Len())
	if n.playhead.Sub(now)+d > BufferCapacity {
		return ErrBufferFull
	}
	n.playhead = n.playhead.Add(d)
	n.played += int64(frame.Len())
	return nil
}

// BufferedDuration returns how far the playhead is ahead of the clock
func (n *Null) BufferedDuration() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return 0
	}
	if d := n.playhead.Sub(n.now()); d > 0 {
		return d
	}
	return 0
}

// Samples returns the total number of samples accepted
func (n *Null) Samples() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.played
}

// Close releases nothing
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.started = false
	n.ready = false
	return nil
}
