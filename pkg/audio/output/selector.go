// ABOUTME: Device selection over an ordered list of backend candidates
// ABOUTME: Tries each backend in turn and returns the first that initializes
package output

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/audio"
)

// DefaultInitTimeout bounds a single candidate's Initialize call
const DefaultInitTimeout = 3 * time.Second

// Candidate is one constructible backend in priority order
type Candidate struct {
	Name string
	New  func() Output
}

// Select initializes candidates in order and returns the first that succeeds.
// Failures of individual candidates are logged and skipped; an error is only
// returned when every candidate fails, and it wraps ErrNoBackend.
func Select(ctx context.Context, format audio.Format, candidates []Candidate, timeout time.Duration) (Output, error) {
	if len(candidates) == 0 {
		return nil, ErrNoBackend
	}

	var errs []error
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := initCandidate(ctx, c, format, timeout)
		if err != nil {
			log.Printf("Audio backend %s unavailable: %v", c.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}

		log.Printf("Selected audio backend: %s", c.Name)
		return out, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

// initCandidate constructs and initializes one candidate, bounded by timeout
func initCandidate(ctx context.Context, c Candidate, format audio.Format, timeout time.Duration) (Output, error) {
	if c.New == nil {
		return nil, fmt.Errorf("%w: no constructor", ErrBackendUnavailable)
	}
	out := c.New()
	if out == nil {
		return nil, fmt.Errorf("%w: constructor returned nil", ErrBackendUnavailable)
	}

	if timeout <= 0 {
		if err := out.Initialize(format); err != nil {
			out.Close()
			return nil, wrapUnavailable(err)
		}
		return out, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- out.Initialize(format)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			out.Close()
			return nil, wrapUnavailable(err)
		}
		return out, nil
	case <-timer.C:
		go abandon(out, done)
		return nil, ErrInitTimeout
	case <-ctx.Done():
		go abandon(out, done)
		return nil, ctx.Err()
	}
}

// abandon waits for a late Initialize and releases whatever it opened
func abandon(out Output, done <-chan error) {
	<-done
	if err := out.Close(); err != nil {
		log.Printf("Warning: closing abandoned %s backend: %v", out.Name(), err)
	}
}

func wrapUnavailable(err error) error {
	if errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}
