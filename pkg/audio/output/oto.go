// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams the ring buffer through a persistent oto player
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process, so it is shared by every Oto output
var (
	otoMu     sync.Mutex
	otoCtx    *oto.Context
	otoFormat audio.Format
)

// otoPlayerBuffer keeps oto's own buffering well below the low watermark
const otoPlayerBuffer = 50 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	ringSink

	player  *oto.Player
	scratch []int16
	mu      sync.Mutex
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Name returns the backend name
func (o *Oto) Name() string { return "oto" }

// Initialize creates (or reuses) the oto context and a player reading from the ring
func (o *Oto) Initialize(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	ctx, err := sharedOtoContext(format)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		o.player.Close()
	}

	o.reset(format)
	o.player = ctx.NewPlayer(o)
	o.player.SetBufferSize(format.Samples(otoPlayerBuffer) * audio.BytesPerSample16)

	log.Printf("Audio output initialized: %dHz, %d channels (oto)", format.SampleRate, format.Channels)
	return nil
}

// sharedOtoContext returns the process-wide oto context, creating it on first use
func sharedOtoContext(format audio.Format) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		// oto doesn't support reinitialization with a different format
		if otoFormat != format {
			return nil, fmt.Errorf("%w: oto context already running at %dHz/%dch",
				ErrUnsupportedFormat, otoFormat.SampleRate, otoFormat.Channels)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
		return otoCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoCtx = ctx
	otoFormat = format
	return ctx, nil
}

// Read implements io.Reader for the oto player
func (o *Oto) Read(p []byte) (int, error) {
	n := len(p) / audio.BytesPerSample16
	if cap(o.scratch) < n {
		o.scratch = make([]int16, n)
	}
	samples := o.scratch[:n]

	o.fill(samples)
	audio.PutPCM16LE(p, samples)
	return n * audio.BytesPerSample16, nil
}

// Start starts the player
func (o *Oto) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return ErrNotInitialized
	}
	if o.started.Load() {
		return nil
	}
	o.started.Store(true)
	o.player.Play()
	return nil
}

// Stop pauses the player
func (o *Oto) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil || !o.started.Load() {
		return nil
	}
	o.started.Store(false)
	o.player.Pause()
	return nil
}

// Enqueue queues audio samples for playback
func (o *Oto) Enqueue(frame audio.Frame) error {
	return o.enqueue(frame)
}

// BufferedDuration returns queued audio in the ring plus oto's player buffer
func (o *Oto) BufferedDuration() time.Duration {
	o.mu.Lock()
	player := o.player
	o.mu.Unlock()

	d := o.buffered()
	if player != nil {
		d += o.format.Duration(player.BufferedSize() / audio.BytesPerSample16)
	}
	return d
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
	o.started.Store(false)

	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil {
		if err := otoCtx.Suspend(); err != nil {
			log.Printf("Warning: oto suspend error: %v", err)
		}
	}
	return nil
}
