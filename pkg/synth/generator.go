// ABOUTME: Phase-accumulator sine generator
// ABOUTME: Produces one frame of 16-bit PCM per call from the shared state
package synth

import (
	"math"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

const twoPi = 2 * math.Pi

// Generator turns the synthesizer state into PCM frames
type Generator struct {
	amplitude float64
}

// NewGenerator creates a generator with DefaultAmplitude
func NewGenerator() *Generator {
	return &Generator{amplitude: DefaultAmplitude}
}

// Produce generates one frame and advances the state's phase.
// The frequency is read once, so a frame never mixes two frequencies.
func (g *Generator) Produce(state *State) audio.Frame {
	samples := make([]int16, state.frameSamples)

	step := twoPi * state.Frequency() / float64(state.sampleRate)
	if math.IsNaN(step) || math.IsInf(step, 0) {
		step = 0
	}
	// fold into [0, 2π) so a single wrap per sample keeps the phase in range
	step = math.Mod(step, twoPi)
	if step < 0 {
		step += twoPi
	}
	if step >= twoPi {
		step = 0
	}

	phase := state.phase
	for i := range samples {
		sample := math.Sin(phase) * g.amplitude
		samples[i] = int16(sample * math.MaxInt16)

		phase += step
		if phase >= twoPi {
			phase -= twoPi
		}
	}
	state.phase = phase

	return audio.Frame{Samples: samples}
}
