// ABOUTME: Tests for the ring buffer and shared ring sink
// ABOUTME: Tests FIFO order, wraparound, zero-fill and underrun counting
package output

import (
	"errors"
	"testing"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

func TestRingBufferFIFO(t *testing.T) {
	rb := NewRingBuffer(4)

	if n := rb.Write([]int16{1, 2, 3}); n != 3 {
		t.Fatalf("expected 3 written, got %d", n)
	}

	out := make([]int16, 2)
	if n := rb.Read(out); n != 2 {
		t.Fatalf("expected 2 read, got %d", n)
	}
	if out[0] != 1 || out[1] != 2 {
		t.Errorf("expected [1 2], got %v", out)
	}

	// wraps around the end of the backing slice
	if n := rb.Write([]int16{4, 5, 6}); n != 3 {
		t.Fatalf("expected 3 written, got %d", n)
	}

	out = make([]int16, 4)
	rb.Read(out)
	for i, want := range []int16{3, 4, 5, 6} {
		if out[i] != want {
			t.Errorf("index %d: expected %d, got %d", i, want, out[i])
		}
	}
}

func TestRingBufferFull(t *testing.T) {
	rb := NewRingBuffer(3)

	if n := rb.Write([]int16{1, 2, 3, 4, 5}); n != 3 {
		t.Errorf("expected 3 written, got %d", n)
	}
	if rb.Free() != 0 {
		t.Errorf("expected no free space, got %d", rb.Free())
	}
	if rb.Available() != 3 {
		t.Errorf("expected 3 available, got %d", rb.Available())
	}
}

func TestRingBufferZeroFill(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Write([]int16{7})

	out := []int16{9, 9, 9}
	if n := rb.Read(out); n != 1 {
		t.Fatalf("expected 1 read, got %d", n)
	}
	if out[0] != 7 || out[1] != 0 || out[2] != 0 {
		t.Errorf("expected [7 0 0], got %v", out)
	}
}

func TestRingBufferReset(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Write([]int16{1, 2})
	rb.Reset()

	if rb.Available() != 0 {
		t.Errorf("expected empty after reset, got %d", rb.Available())
	}
}

func TestRingSinkEnqueueBeforeStart(t *testing.T) {
	var s ringSink
	s.reset(audio.Mono16(44100))

	err := s.enqueue(audio.Frame{Samples: make([]int16, 735)})
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestRingSinkUninitialized(t *testing.T) {
	var s ringSink

	if err := s.enqueue(audio.Frame{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if d := s.buffered(); d != 0 {
		t.Errorf("expected 0 buffered, got %v", d)
	}
}

func TestRingSinkCapacity(t *testing.T) {
	var s ringSink
	s.reset(audio.Mono16(44100))
	s.started.Store(true)

	frame := audio.Frame{Samples: make([]int16, 735)}
	// 22050 samples of capacity hold 30 whole frames
	for i := 0; i < 30; i++ {
		if err := s.enqueue(frame); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := s.enqueue(frame); !errors.Is(err, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull, got %v", err)
	}

	if d := s.buffered(); d > BufferCapacity {
		t.Errorf("buffered %v exceeds capacity %v", d, BufferCapacity)
	}
	if d := s.buffered(); d < 490*time.Millisecond {
		t.Errorf("expected ~500ms buffered, got %v", d)
	}
}

func TestRingSinkUnderruns(t *testing.T) {
	var s ringSink
	s.reset(audio.Mono16(1000))
	s.started.Store(true)

	out := make([]int16, 10)

	// an empty ring before the first enqueue is startup, not an underrun
	s.fill(out)
	if s.Underruns() != 0 {
		t.Errorf("expected 0 underruns before priming, got %d", s.Underruns())
	}

	s.enqueue(audio.Frame{Samples: []int16{1, 2, 3}})
	if n := s.fill(out); n != 3 {
		t.Errorf("expected 3 samples, got %d", n)
	}
	if s.Underruns() != 1 {
		t.Errorf("expected 1 underrun, got %d", s.Underruns())
	}
}
