package synth

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalInit is returned by Start when no audio backend could be used
	ErrFatalInit = errors.New("audio initialization failed")

	// ErrInvalidState is the parent of errors caused by bad calls that leave
	// the running state untouched
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidFrequency is returned for non-finite or non-positive frequencies
	ErrInvalidFrequency = fmt.Errorf("%w: invalid frequency", ErrInvalidState)

	// ErrInvalidConfig is returned by New for inconsistent configuration
	ErrInvalidConfig = errors.New("invalid synthesizer config")
)
