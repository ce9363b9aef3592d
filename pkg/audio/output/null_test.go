// ABOUTME: Tests for the null output
// ABOUTME: Tests wall-clock draining, capacity and lifecycle errors
package output

import (
	"errors"
	"testing"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestNull(t *testing.T) (*Null, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	n := newNullWithClock(clock.now)
	if err := n.Initialize(audio.Mono16(1000)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return n, clock
}

func TestNullDrainsWithClock(t *testing.T) {
	n, clock := newTestNull(t)
	if err := n.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 100 samples at 1kHz = 100ms
	if err := n.Enqueue(audio.Frame{Samples: make([]int16, 100)}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if d := n.BufferedDuration(); d != 100*time.Millisecond {
		t.Errorf("expected 100ms buffered, got %v", d)
	}

	clock.advance(40 * time.Millisecond)
	if d := n.BufferedDuration(); d != 60*time.Millisecond {
		t.Errorf("expected 60ms buffered, got %v", d)
	}

	clock.advance(time.Second)
	if d := n.BufferedDuration(); d != 0 {
		t.Errorf("expected drained buffer, got %v", d)
	}

	// after an underrun the playhead restarts from now
	n.Enqueue(audio.Frame{Samples: make([]int16, 50)})
	if d := n.BufferedDuration(); d != 50*time.Millisecond {
		t.Errorf("expected 50ms buffered, got %v", d)
	}

	if n.Samples() != 150 {
		t.Errorf("expected 150 samples accepted, got %d", n.Samples())
	}
}

func TestNullCapacity(t *testing.T) {
	n, _ := newTestNull(t)
	n.Start()

	frame := audio.Frame{Samples: make([]int16, 100)}
	for i := 0; i < 5; i++ {
		if err := n.Enqueue(frame); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := n.Enqueue(frame); !errors.Is(err, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull, got %v", err)
	}
}

func TestNullLifecycle(t *testing.T) {
	n := NewNull()

	if err := n.Start(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := n.Initialize(audio.Mono16(44100)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := n.Enqueue(audio.Frame{Samples: make([]int16, 10)}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := n.Stop(); err != nil {
			t.Errorf("Stop %d failed: %v", i, err)
		}
	}
	if d := n.BufferedDuration(); d != 0 {
		t.Errorf("expected 0 buffered after stop, got %v", d)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNullRejectsInvalidFormat(t *testing.T) {
	formats := []audio.Format{
		{},
		{SampleRate: 44100, Channels: 2, BitDepth: 16},
		{SampleRate: 44100, Channels: 1, BitDepth: 24},
		{SampleRate: 44100, Channels: 1, BitDepth: 8},
		{SampleRate: -44100, Channels: 1, BitDepth: 16},
	}

	for _, format := range formats {
		n := NewNull()
		if err := n.Initialize(format); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Initialize(%+v): expected ErrUnsupportedFormat, got %v", format, err)
		}
		if err := n.Start(); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Initialize(%+v) left the output usable: %v", format, err)
		}
	}
}
