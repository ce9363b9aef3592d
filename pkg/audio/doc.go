// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Frame types and PCM encoding functions
// Package audio provides the PCM types shared by the synthesizer and its outputs.
//
// This package defines:
//   - Format: describes a PCM stream (sample rate, channels, bit depth)
//   - Frame: one block of signed 16-bit samples produced per scheduler tick
//
// It also converts between samples, bytes and durations:
//
//	format := audio.Mono16(44100)
//	n := format.Samples(500 * time.Millisecond) // 22050
//	data := audio.EncodePCM16LE(frame.Samples)  // little-endian wire bytes
package audio
