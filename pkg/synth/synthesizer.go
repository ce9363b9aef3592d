// ABOUTME: Synthesizer facade over state, generator, scheduler and output
// ABOUTME: Exposes Start, Stop and SetFrequency to control glue
package synth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio/output"
	"github.com/google/uuid"
)

// Stats is a snapshot of the synthesizer for status displays
type Stats struct {
	ID           string
	Running      bool
	Backend      string
	Frequency    float64
	SampleRate   int
	FrameSamples int
	Buffered     time.Duration
	Underruns    int64
	Scheduler    SchedulerStats
}

// Synthesizer produces a sine tone on the first available audio backend
type Synthesizer struct {
	config Config
	id     string
	state  *State
	gen    *Generator

	mu        sync.Mutex // guards sink, scheduler and last
	sink      output.Output
	scheduler *Scheduler
	last      SchedulerStats
}

// New creates a stopped synthesizer. Zero config fields receive defaults.
func New(config Config) (*Synthesizer, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Synthesizer{
		config: config,
		id:     uuid.New().String(),
		state:  NewState(config.SampleRate, config.TargetFPS, config.Frequency),
		gen:    NewGenerator(),
	}, nil
}

// Start selects an output, starts playback and launches the scheduler.
// It is a no-op if the synthesizer is already running. If no backend can be
// initialized the returned error wraps ErrFatalInit.
func (s *Synthesizer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil
	}

	candidates := s.config.Candidates
	if len(candidates) == 0 {
		var err error
		candidates, err = output.Candidates(s.config.Backends)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFatalInit, err)
		}
	}

	sink, err := output.Select(ctx, s.state.Format(), candidates, s.config.InitTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFatalInit, err)
	}

	if err := sink.Start(); err != nil {
		if cerr := sink.Close(); cerr != nil {
			log.Printf("Warning: closing %s backend after failed start: %v", sink.Name(), cerr)
		}
		return fmt.Errorf("%w: starting %s: %w", ErrFatalInit, sink.Name(), err)
	}

	scheduler := NewScheduler(s.state, s.gen, sink, SchedulerConfig{
		TargetFPS: s.config.TargetFPS,
		Watermark: s.config.Watermark,
		Realtime:  s.config.Realtime,
		OnTick:    s.config.OnTick,
	})
	scheduler.Start()

	s.sink = sink
	s.scheduler = scheduler

	log.Printf("Synthesizer %s started: %s, %dHz, %.2fHz tone",
		s.id, sink.Name(), s.config.SampleRate, s.state.Frequency())
	return nil
}

// Stop stops the scheduler (waiting for the audio thread to exit), then
// stops and releases the output. Safe to call more than once.
func (s *Synthesizer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return nil
	}

	s.scheduler.Stop()
	s.last = s.scheduler.Stats()
	s.scheduler = nil

	var errs []error
	if err := s.sink.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping %s: %w", s.sink.Name(), err))
	}
	if err := s.sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing %s: %w", s.sink.Name(), err))
	}
	s.sink = nil

	log.Printf("Synthesizer %s stopped", s.id)
	return errors.Join(errs...)
}

// SetFrequency changes the tone. The new value is picked up by the next
// generated frame.
func (s *Synthesizer) SetFrequency(hz float64) error {
	return s.state.SetFrequency(hz)
}

// Frequency returns the current frequency in Hz
func (s *Synthesizer) Frequency() float64 {
	return s.state.Frequency()
}

// Running reports whether the synthesizer is producing audio
func (s *Synthesizer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler != nil
}

// CurrentBackendName returns the selected output's name, or "" when stopped
func (s *Synthesizer) CurrentBackendName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sink == nil {
		return ""
	}
	return s.sink.Name()
}

// ID returns the session identifier used in logs
func (s *Synthesizer) ID() string {
	return s.id
}

// Stats returns a snapshot of the synthesizer. While stopped, scheduler
// stats are those of the last run.
func (s *Synthesizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		ID:           s.id,
		Frequency:    s.state.Frequency(),
		SampleRate:   s.state.SampleRate(),
		FrameSamples: s.state.FrameSamples(),
		Scheduler:    s.last,
	}

	if s.scheduler != nil {
		stats.Running = true
		stats.Scheduler = s.scheduler.Stats()
	}
	if s.sink != nil {
		stats.Backend = s.sink.Name()
		stats.Buffered = s.sink.BufferedDuration()
		if ur, ok := s.sink.(output.UnderrunReporter); ok {
			stats.Underruns = ur.Underruns()
		}
	}

	return stats
}
