// ABOUTME: Audio output package for playing synthesized audio
// ABOUTME: Provides the Output interface, backends and device selection
// Package output provides buffered audio playback backends.
//
// Every backend implements Output: it is initialized for mono 16-bit PCM,
// started, fed one Frame at a time and asked how much queued audio has not
// been played yet. Backends: pulse, malgo, oto, portaudio (-tags portaudio),
// sdl (-tags sdl) and null, which always initializes and discards audio.
//
// Select tries candidates in order and returns the first that initializes:
//
//	candidates, _ := output.Candidates([]string{"pulse", "malgo"})
//	out, err := output.Select(ctx, audio.Mono16(44100), candidates, output.DefaultInitTimeout)
//	err = out.Start()
//	err = out.Enqueue(frame)
package output
