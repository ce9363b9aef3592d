// ABOUTME: Thread-safe ring buffer shared by callback-driven backends
// ABOUTME: Queues samples between the scheduler and the device callback
package output

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// RingBuffer provides thread-safe circular buffer for audio samples
type RingBuffer struct {
	buffer   []int16
	readPos  int
	writePos int
	size     int
	count    int // Number of samples currently in buffer
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		buffer: make([]int16, capacity),
		size:   capacity,
	}
}

// Write adds samples to the ring buffer and returns how many fit
func (rb *RingBuffer) Write(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for i := 0; i < len(samples) && rb.count < rb.size; i++ {
		rb.buffer[rb.writePos] = samples[i]
		rb.writePos = (rb.writePos + 1) % rb.size
		rb.count++
		written++
	}
	return written
}

// Read retrieves samples from the ring buffer, zero-filling on underrun
func (rb *RingBuffer) Read(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for i := 0; i < len(samples) && rb.count > 0; i++ {
		samples[i] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % rb.size
		rb.count--
		read++
	}

	for i := read; i < len(samples); i++ {
		samples[i] = 0
	}

	return read
}

// Available returns the number of samples available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free slots in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}

// Reset drops all queued samples
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
}

// ringSink holds the state every ring-buffered backend shares: the
// negotiated format, the queue feeding the device callback and counters.
type ringSink struct {
	format    audio.Format
	ring      *RingBuffer
	started   atomic.Bool
	primed    atomic.Bool
	underruns atomic.Int64
}

// reset allocates a fresh ring sized to BufferCapacity for format
func (s *ringSink) reset(format audio.Format) {
	s.format = format
	s.ring = NewRingBuffer(format.Samples(BufferCapacity))
	s.started.Store(false)
	s.primed.Store(false)
}

// enqueue copies frame into the ring
func (s *ringSink) enqueue(frame audio.Frame) error {
	if s.ring == nil {
		return ErrNotInitialized
	}
	if !s.started.Load() {
		return ErrNotStarted
	}
	if s.ring.Free() < frame.Len() {
		return ErrBufferFull
	}
	s.ring.Write(frame.Samples)
	s.primed.Store(true)
	return nil
}

// fill is called from the device callback to pull queued samples
func (s *ringSink) fill(out []int16) int {
	if s.ring == nil {
		for i := range out {
			out[i] = 0
		}
		return 0
	}
	n := s.ring.Read(out)
	if n < len(out) && s.started.Load() && s.primed.Load() {
		s.underruns.Add(1)
	}
	return n
}

// buffered returns the queued duration
func (s *ringSink) buffered() time.Duration {
	if s.ring == nil {
		return 0
	}
	return s.format.Duration(s.ring.Available())
}

// Underruns returns how many callbacks found the buffer short
func (s *ringSink) Underruns() int64 {
	return s.underruns.Load()
}
