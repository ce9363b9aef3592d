// ABOUTME: Frame scheduler for real-time audio generation
// ABOUTME: Paces ticks on a locked OS thread and applies backlog backpressure
package synth

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio/output"
)

// maxEnqueueErrorLogs limits how many enqueue failures are logged per run
const maxEnqueueErrorLogs = 5

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	TargetFPS int
	Watermark Watermark
	Realtime  bool

	// OnTick runs on the audio thread at the start of every tick. It must
	// not call Stop or Start synchronously, since Stop waits for the loop
	// that is running the hook. Use a new goroutine to stop from a hook.
	OnTick func(time.Time)
}

// SchedulerStats tracks scheduler metrics
type SchedulerStats struct {
	Ticks         int64
	Frames        int64
	Skipped       int64 // ticks where the backlog was above the low watermark
	EnqueueErrors int64
	LastTick      time.Duration // work time of the most recent tick
}

// Scheduler runs the generate/enqueue loop at a fixed tick rate
type Scheduler struct {
	state     *State
	gen       *Generator
	sink      output.Output
	period    time.Duration
	frameDur  time.Duration
	watermark Watermark
	realtime  bool
	onTick    func(time.Time)

	mu      sync.Mutex // serializes Start/Stop
	running atomic.Bool
	done    chan struct{}

	ticks         atomic.Int64
	frames        atomic.Int64
	skipped       atomic.Int64
	enqueueErrors atomic.Int64
	lastTick      atomic.Int64
}

// NewScheduler creates an idle scheduler feeding sink
func NewScheduler(state *State, gen *Generator, sink output.Output, config SchedulerConfig) *Scheduler {
	fps := config.TargetFPS
	if fps <= 0 {
		fps = DefaultTargetFPS
	}

	return &Scheduler{
		state:     state,
		gen:       gen,
		sink:      sink,
		period:    time.Second / time.Duration(fps),
		frameDur:  state.Format().Duration(state.FrameSamples()),
		watermark: config.Watermark,
		realtime:  config.Realtime,
		onTick:    config.OnTick,
	}
}

// Start launches the loop on its own OS thread. No-op if already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return
	}

	s.running.Store(true)
	s.done = make(chan struct{})
	go s.run(s.done)
}

// Stop clears the running flag and waits for the loop to exit. After Stop
// returns the scheduler no longer touches the sink. No-op if idle.
// Calling Stop from the OnTick hook deadlocks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return
	}

	s.running.Store(false)
	<-s.done
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Ticks:         s.ticks.Load(),
		Frames:        s.frames.Load(),
		Skipped:       s.skipped.Load(),
		EnqueueErrors: s.enqueueErrors.Load(),
		LastTick:      time.Duration(s.lastTick.Load()),
	}
}

// run is the audio thread body
func (s *Scheduler) run(done chan struct{}) {
	defer close(done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if s.realtime {
		if err := raisePriority(); err != nil {
			log.Printf("Realtime priority not granted, continuing at normal priority: %v", err)
		} else {
			log.Printf("Audio thread running at elevated priority")
		}
	}

	log.Printf("Scheduler started: period=%v, frame=%d samples, low watermark=%v",
		s.period, s.state.FrameSamples(), s.watermark.Low)

	for s.running.Load() {
		s.tick()
	}

	log.Printf("Scheduler stopped after %d ticks (%d frames)", s.ticks.Load(), s.frames.Load())
}

// tick runs one iteration: generate if the backlog is low, then sleep out
// the rest of the period
func (s *Scheduler) tick() {
	start := time.Now()
	if s.onTick != nil {
		s.onTick(start)
	}
	s.ticks.Add(1)

	buffered := s.sink.BufferedDuration()
	if buffered < s.watermark.Low && buffered+s.frameDur <= s.watermark.Capacity {
		frame := s.gen.Produce(s.state)
		if err := s.sink.Enqueue(frame); err != nil {
			if n := s.enqueueErrors.Add(1); n <= maxEnqueueErrorLogs {
				log.Printf("Enqueue to %s failed: %v", s.sink.Name(), err)
			}
		} else {
			s.frames.Add(1)
		}
	} else {
		s.skipped.Add(1)
	}

	elapsed := time.Since(start)
	s.lastTick.Store(int64(elapsed))
	if elapsed < s.period {
		time.Sleep(s.period - elapsed)
	}
}
