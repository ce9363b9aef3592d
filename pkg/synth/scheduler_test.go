// ABOUTME: Tests for the frame scheduler
// ABOUTME: Tests backpressure, stop semantics and tick rate
package synth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio/output"
)

func newTestScheduler(sink output.Output, onTick func(time.Time)) *Scheduler {
	state := NewState(44100, 60, 440)
	return NewScheduler(state, NewGenerator(), sink, SchedulerConfig{
		TargetFPS: 60,
		Watermark: Watermark{Low: DefaultLowWatermark, Capacity: DefaultBufferCapacity},
		OnTick:    onTick,
	})
}

func TestSchedulerGeneratesWhenBacklogLow(t *testing.T) {
	sink := newRecordingSink("rec")
	sink.Start()

	s := newTestScheduler(sink, nil)
	s.Start()
	defer s.Stop()

	if !waitFor(t, time.Second, func() bool { return sink.frameCount() >= 3 }) {
		t.Fatalf("expected frames to be generated, got %d", sink.frameCount())
	}
	if n := sink.lastFrame().Len(); n != 735 {
		t.Errorf("expected 735-sample frames, got %d", n)
	}
}

func TestSchedulerBackpressure(t *testing.T) {
	sink := newRecordingSink("rec")
	sink.Start()
	sink.setBacklog(DefaultLowWatermark)

	s := newTestScheduler(sink, nil)
	s.Start()

	if !waitFor(t, time.Second, func() bool { return s.Stats().Skipped >= 5 }) {
		t.Fatalf("expected skipped ticks, got %+v", s.Stats())
	}
	if n := sink.frameCount(); n != 0 {
		t.Errorf("expected no frames while backlog is at the watermark, got %d", n)
	}

	sink.setBacklog(100 * time.Millisecond)
	if !waitFor(t, time.Second, func() bool { return sink.frameCount() > 0 }) {
		t.Error("expected generation to resume once the backlog drained")
	}

	s.Stop()
	stats := s.Stats()
	if stats.Ticks != stats.Frames+stats.Skipped+stats.EnqueueErrors {
		t.Errorf("tick accounting mismatch: %+v", stats)
	}
}

func TestSchedulerRespectsCapacity(t *testing.T) {
	sink := newRecordingSink("rec")
	sink.Start()

	state := NewState(44100, 60, 440)
	// low watermark just under capacity: one more frame would overflow
	s := NewScheduler(state, NewGenerator(), sink, SchedulerConfig{
		TargetFPS: 60,
		Watermark: Watermark{Low: 495 * time.Millisecond, Capacity: 500 * time.Millisecond},
	})
	sink.setBacklog(490 * time.Millisecond)

	s.Start()
	waitFor(t, time.Second, func() bool { return s.Stats().Ticks >= 5 })
	s.Stop()

	if n := sink.frameCount(); n != 0 {
		t.Errorf("expected no frames that would exceed capacity, got %d", n)
	}
}

func TestSchedulerStopJoins(t *testing.T) {
	sink := newRecordingSink("rec")
	sink.Start()

	s := newTestScheduler(sink, nil)
	s.Start()
	waitFor(t, time.Second, func() bool { return sink.frameCount() > 0 })

	s.Stop()
	if s.Running() {
		t.Error("expected scheduler to be idle after Stop")
	}

	ticks := s.Stats().Ticks
	time.Sleep(100 * time.Millisecond)
	if after := s.Stats().Ticks; after != ticks {
		t.Errorf("scheduler ticked after Stop returned: %d -> %d", ticks, after)
	}

	// second stop and stop-before-start are no-ops
	s.Stop()
	newTestScheduler(sink, nil).Stop()
}

func TestSchedulerStopFromTickHook(t *testing.T) {
	sink := newRecordingSink("rec")
	sink.Start()

	var (
		s    *Scheduler
		once sync.Once
	)
	stopped := make(chan struct{})
	s = newTestScheduler(sink, func(time.Time) {
		once.Do(func() {
			go func() {
				s.Stop()
				close(stopped)
			}()
		})
	})
	s.Start()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop requested from the tick hook never returned")
	}
	if s.Running() {
		t.Error("expected scheduler to be idle")
	}
}

func TestSynthesizerStopFromTickHook(t *testing.T) {
	sink := newRecordingSink("rec")
	stopped := make(chan error, 1)

	var (
		s    *Synthesizer
		once sync.Once
	)
	s, err := New(Config{
		Candidates: []output.Candidate{sink.candidate()},
		OnTick: func(time.Time) {
			once.Do(func() {
				go func() { stopped <- s.Stop() }()
			})
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop requested from the tick hook never returned")
	}
	if s.Running() {
		t.Error("expected synthesizer to be stopped")
	}
}

func TestSchedulerCountsEnqueueErrors(t *testing.T) {
	sink := newRecordingSink("rec") // never started: every enqueue fails

	s := newTestScheduler(sink, nil)
	s.Start()
	waitFor(t, time.Second, func() bool { return s.Stats().EnqueueErrors >= 3 })
	s.Stop()

	if s.Stats().EnqueueErrors < 3 {
		t.Errorf("expected enqueue errors to be counted, got %+v", s.Stats())
	}
}

func TestSchedulerTickRate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 5s timing test in short mode")
	}

	const (
		targetFPS = 60
		duration  = 5 * time.Second
		warmup    = 10
	)

	var (
		mu    sync.Mutex
		ticks []time.Time
	)
	onTick := func(now time.Time) {
		mu.Lock()
		ticks = append(ticks, now)
		mu.Unlock()
	}

	sink := output.NewNull()
	if err := sink.Initialize(NewState(44100, targetFPS, 440).Format()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	sink.Start()
	defer sink.Close()

	s := newTestScheduler(sink, onTick)
	s.Start()
	time.Sleep(duration)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()

	if len(ticks) <= warmup+1 {
		t.Fatalf("too few ticks: %d", len(ticks))
	}
	relevant := ticks[warmup:]
	span := relevant[len(relevant)-1].Sub(relevant[0])
	avgFPS := float64(len(relevant)-1) / span.Seconds()

	t.Logf("fps stats over %v: average %.2f over %d ticks", duration, avgFPS, len(relevant))

	if avgFPS < targetFPS-5 || avgFPS > targetFPS+5 {
		t.Errorf("average fps %.2f outside [%d, %d]", avgFPS, targetFPS-5, targetFPS+5)
	}
}
