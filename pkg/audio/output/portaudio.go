//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using PortAudio
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	ringSink

	stream *portaudio.Stream
	mu     sync.Mutex
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string { return "portaudio" }

// Initialize initializes PortAudio and opens the default output stream
func (p *PortAudio) Initialize(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		p.closeStream()
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.reset(format)

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), 0, func(out []int16) {
		p.fill(out)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	log.Printf("Audio output initialized: %dHz, %d channels (portaudio)", format.SampleRate, format.Channels)
	return nil
}

// Start starts the stream
func (p *PortAudio) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotInitialized
	}
	if p.started.Load() {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.started.Store(true)
	return nil
}

// Stop stops the stream
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil || !p.started.Load() {
		return nil
	}
	p.started.Store(false)
	if err := p.stream.Stop(); err != nil {
		log.Printf("Warning: portaudio stop error: %v", err)
	}
	return nil
}

// Enqueue queues audio samples for playback
func (p *PortAudio) Enqueue(frame audio.Frame) error {
	return p.enqueue(frame)
}

// BufferedDuration returns the unplayed audio in the ring buffer
func (p *PortAudio) BufferedDuration() time.Duration {
	return p.buffered()
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	return p.closeStream()
}

// closeStream closes the stream and terminates PortAudio (must hold p.mu)
func (p *PortAudio) closeStream() error {
	if p.started.Load() {
		if err := p.stream.Stop(); err != nil {
			log.Printf("Warning: portaudio stop error: %v", err)
		}
		p.started.Store(false)
	}
	err := p.stream.Close()
	p.stream = nil
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
