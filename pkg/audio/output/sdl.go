//go:build sdl

// ABOUTME: SDL2 output implementation
// ABOUTME: Pushes frames into the SDL audio queue and reads back its depth
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
	"github.com/veandco/go-sdl2/sdl"
)

// sdlDeviceSamples is the size of the device buffer SDL pulls per callback
const sdlDeviceSamples = 1024

// SDL output implementation using the SDL2 audio queue
type SDL struct {
	format  audio.Format
	device  sdl.AudioDeviceID
	open    bool
	started bool
	mu      sync.Mutex
}

// NewSDL creates a new SDL output
func NewSDL() Output {
	return &SDL{}
}

// Name returns the backend name
func (s *SDL) Name() string { return "sdl" }

// Initialize opens the default SDL playback device
func (s *SDL) Initialize(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		s.closeDevice()
	}

	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("unable to initialise sdl audio: %w", err)
	}

	spec := &sdl.AudioSpec{
		Freq:     int32(format.SampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: uint8(format.Channels),
		Samples:  sdlDeviceSamples,
	}
	device, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return fmt.Errorf("unable to open sdl audio: %w", err)
	}

	s.format = format
	s.device = device
	s.open = true

	log.Printf("Audio output initialized: %dHz, %d channels (sdl)", format.SampleRate, format.Channels)
	return nil
}

// Start unpauses the device
func (s *SDL) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotInitialized
	}
	sdl.PauseAudioDevice(s.device, false)
	s.started = true
	return nil
}

// Stop pauses the device
func (s *SDL) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || !s.started {
		return nil
	}
	sdl.PauseAudioDevice(s.device, true)
	s.started = false
	return nil
}

// Enqueue queues audio samples for playback
func (s *SDL) Enqueue(frame audio.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	data := audio.EncodePCM16LE(frame.Samples)
	limit := uint32(s.format.Samples(BufferCapacity) * audio.BytesPerSample16)
	if sdl.GetQueuedAudioSize(s.device)+uint32(len(data)) > limit {
		return ErrBufferFull
	}
	if err := sdl.QueueAudio(s.device, data); err != nil {
		return fmt.Errorf("sdl queue failed: %w", err)
	}
	return nil
}

// BufferedDuration returns the depth of the SDL audio queue
func (s *SDL) BufferedDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0
	}
	queued := int(sdl.GetQueuedAudioSize(s.device))
	return s.format.Duration(queued / audio.BytesPerSample16)
}

// Close releases the device
func (s *SDL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		s.closeDevice()
	}
	return nil
}

// closeDevice closes the device and the audio subsystem (must hold s.mu)
func (s *SDL) closeDevice() {
	sdl.ClearQueuedAudio(s.device)
	sdl.CloseAudioDevice(s.device)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	s.open = false
	s.started = false
}
