// ABOUTME: Audio type definitions
// ABOUTME: Defines the PCM format, frames and duration helpers shared by synth and outputs
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// 16-bit PCM range constants
	MaxInt16 = math.MaxInt16
	MinInt16 = math.MinInt16

	// BytesPerSample16 is the width of one 16-bit sample on the wire
	BytesPerSample16 = 2
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Mono16 returns the mono 16-bit format at the given rate
func Mono16(sampleRate int) Format {
	return Format{
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   16,
	}
}

// BytesPerSecond returns the byte rate of the format
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * (f.BitDepth / 8)
}

// Duration returns how long n interleaved samples last in this format
func (f Format) Duration(samples int) time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := samples / f.Channels
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Samples returns the number of interleaved samples covering d
func (f Format) Samples(d time.Duration) int {
	return int(d*time.Duration(f.SampleRate)/time.Second) * f.Channels
}

// Frame is one block of mono 16-bit PCM produced per scheduler tick
type Frame struct {
	Samples []int16
}

// Len returns the number of samples in the frame
func (f Frame) Len() int {
	return len(f.Samples)
}

// EncodePCM16LE encodes samples as raw little-endian signed 16-bit PCM
func EncodePCM16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*BytesPerSample16)
	PutPCM16LE(out, samples)
	return out
}

// PutPCM16LE writes samples into dst as little-endian PCM and returns
// the number of samples written
func PutPCM16LE(dst []byte, samples []int16) int {
	n := len(dst) / BytesPerSample16
	if n > len(samples) {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(samples[i]))
	}
	return n
}

// DecodePCM16LE decodes raw little-endian signed 16-bit PCM
func DecodePCM16LE(data []byte) []int16 {
	samples := make([]int16, len(data)/BytesPerSample16)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
