// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo, fed from a ring buffer in the device callback
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	ringSink

	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	scratch  []int16
	mu       sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo() Output {
	return &Malgo{}
}

// Name returns the backend name
func (m *Malgo) Name() string { return "malgo" }

// Initialize opens the default playback device with the specified format
func (m *Malgo) Initialize(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		m.closeDevice()
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	m.reset(format)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	m.device = device

	log.Printf("Audio output initialized: %dHz, %d channels, %d-bit (malgo)",
		format.SampleRate, format.Channels, format.BitDepth)

	return nil
}

// Start starts the playback device
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrNotInitialized
	}
	if m.started.Load() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	m.started.Store(true)
	return nil
}

// Stop stops the playback device
func (m *Malgo) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil || !m.started.Load() {
		return nil
	}
	m.started.Store(false)
	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	return nil
}

// Enqueue queues audio samples for playback
func (m *Malgo) Enqueue(frame audio.Frame) error {
	return m.enqueue(frame)
}

// BufferedDuration returns the unplayed audio in the ring buffer
func (m *Malgo) BufferedDuration() time.Duration {
	return m.buffered()
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	total := int(frameCount) * m.format.Channels
	if cap(m.scratch) < total {
		m.scratch = make([]int16, total)
	}
	samples := m.scratch[:total]

	m.fill(samples)
	audio.PutPCM16LE(pOutput, samples)
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.device == nil {
		return
	}
	if m.started.Load() {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
	}
	m.device.Uninit()
	m.device = nil
	m.started.Store(false)
}
