package synth

import (
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// State is the synthesizer state shared by the facade, generator and
// scheduler. The frequency is the only field written from outside the
// audio thread; it is stored as float64 bits in one atomic word.
// The phase is owned by the audio thread.
type State struct {
	phase        float64
	frequency    atomic.Uint64
	sampleRate   int
	frameSamples int
}

// NewState creates the state for the given rate and tick cadence. An
// invalid frequency is replaced by DefaultFrequency.
func NewState(sampleRate, targetFPS int, frequency float64) *State {
	s := &State{
		sampleRate:   sampleRate,
		frameSamples: sampleRate / targetFPS,
	}
	if err := s.SetFrequency(frequency); err != nil {
		s.frequency.Store(math.Float64bits(DefaultFrequency))
	}
	return s
}

// Frequency returns the current frequency in Hz
func (s *State) Frequency() float64 {
	return math.Float64frombits(s.frequency.Load())
}

// SetFrequency stores a new frequency in Hz. Non-finite or non-positive
// values are rejected and the stored frequency is left unchanged.
func (s *State) SetFrequency(hz float64) error {
	if err := validFrequency(hz); err != nil {
		return err
	}
	s.frequency.Store(math.Float64bits(hz))
	return nil
}

// Phase returns the accumulator phase in radians. Only meaningful on the
// audio thread or while the scheduler is stopped.
func (s *State) Phase() float64 {
	return s.phase
}

// SampleRate returns the sample rate in Hz
func (s *State) SampleRate() int {
	return s.sampleRate
}

// FrameSamples returns the number of samples per frame
func (s *State) FrameSamples() int {
	return s.frameSamples
}

// Format returns the PCM format produced from this state
func (s *State) Format() audio.Format {
	return audio.Mono16(s.sampleRate)
}
