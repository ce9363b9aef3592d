// ABOUTME: Real-time sine synthesizer package
// ABOUTME: Generator, frame scheduler and the Synthesizer control facade
// Package synth produces a continuous sine tone in real time.
//
// A Synthesizer owns the shared State (phase, frequency, sample rate), a
// Generator that turns the state into one Frame of 16-bit PCM per tick, and
// a Scheduler that runs on a dedicated OS thread, paces ticks to the target
// frame rate and only generates when the selected output's backlog has
// drained below the low watermark.
//
// Example:
//
//	s, err := synth.New(synth.Config{Frequency: 440})
//	if err := s.Start(ctx); err != nil {
//	    log.Fatalf("audio init failed: %v", err)
//	}
//	defer s.Stop()
//	s.SetFrequency(500)
package synth
