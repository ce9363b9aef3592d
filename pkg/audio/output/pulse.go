// ABOUTME: PulseAudio output implementation
// ABOUTME: Native PulseAudio protocol client streaming the ring buffer
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
	"github.com/jfreymuth/pulse"
)

// pulseLatency is the server-side buffer requested for the stream, in seconds
const pulseLatency = 0.1

// Pulse output implementation talking to a PulseAudio (or PipeWire) server
type Pulse struct {
	ringSink

	client *pulse.Client
	stream *pulse.PlaybackStream
	mu     sync.Mutex
}

// NewPulse creates a new Pulse output
func NewPulse() Output {
	return &Pulse{}
}

// Name returns the backend name
func (p *Pulse) Name() string { return "pulse" }

// Initialize connects to the server and creates a corked mono stream
func (p *Pulse) Initialize(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeStream()

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("tonesynth"),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to pulse server: %w", err)
	}

	p.reset(format)

	stream, err := client.NewPlayback(pulse.Int16Reader(p.read),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(format.SampleRate),
		pulse.PlaybackLatency(pulseLatency),
	)
	if err != nil {
		client.Close()
		return fmt.Errorf("pulse.NewPlayback failed: %w", err)
	}

	p.client = client
	p.stream = stream

	log.Printf("Audio output initialized: %dHz, %d channels (pulse)", format.SampleRate, format.Channels)
	return nil
}

// read is the stream callback
func (p *Pulse) read(buf []int16) (int, error) {
	p.fill(buf)
	return len(buf), nil
}

// Start uncorks the stream
func (p *Pulse) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotInitialized
	}
	if p.started.Load() {
		return nil
	}
	p.started.Store(true)
	p.stream.Start()
	return nil
}

// Stop corks the stream
func (p *Pulse) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil || !p.started.Load() {
		return nil
	}
	p.started.Store(false)
	p.stream.Stop()
	if err := p.stream.Error(); err != nil {
		log.Printf("Warning: pulse stream error: %v", err)
	}
	return nil
}

// Enqueue queues audio samples for playback
func (p *Pulse) Enqueue(frame audio.Frame) error {
	return p.enqueue(frame)
}

// BufferedDuration returns the unplayed audio in the ring buffer
func (p *Pulse) BufferedDuration() time.Duration {
	return p.buffered()
}

// Close releases the stream and the server connection
func (p *Pulse) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeStream()
	return nil
}

// closeStream tears down stream and client (must hold p.mu)
func (p *Pulse) closeStream() {
	if p.stream != nil {
		if p.started.Load() {
			p.stream.Stop()
		}
		p.stream.Close()
		p.stream = nil
	}
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
	p.started.Store(false)
}
