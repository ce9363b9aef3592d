package synth

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
	"github.com/Resonate-Protocol/tonesynth/pkg/audio/output"
)

// recordingSink is an in-memory output that keeps every frame it receives
type recordingSink struct {
	name     string
	initErr  error
	startErr error
	closeErr error

	mu        sync.Mutex
	backlog   time.Duration
	frames    []audio.Frame
	started   bool
	starts    int
	stops     int
	closes    int
	lateCalls int // sink calls after Close
}

func newRecordingSink(name string) *recordingSink {
	return &recordingSink{name: name}
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Initialize(format audio.Format) error {
	return r.initErr
}

func (r *recordingSink) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.started = true
	r.starts++
	return nil
}

func (r *recordingSink) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = false
	r.stops++
	return nil
}

func (r *recordingSink) Enqueue(frame audio.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closes > 0 {
		r.lateCalls++
	}
	if !r.started {
		return output.ErrNotStarted
	}
	r.frames = append(r.frames, frame)
	return nil
}

func (r *recordingSink) BufferedDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closes > 0 {
		r.lateCalls++
	}
	return r.backlog
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return r.closeErr
}

func (r *recordingSink) setBacklog(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backlog = d
}

func (r *recordingSink) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingSink) lastFrame() audio.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func (r *recordingSink) candidate() output.Candidate {
	return output.Candidate{Name: r.name, New: func() output.Output { return r }}
}

func failingCandidate(name string) output.Candidate {
	sink := newRecordingSink(name)
	sink.initErr = errors.New(name + ": device unavailable")
	return sink.candidate()
}

// waitFor polls cond until it holds or the timeout expires
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
