//go:build !linux

package synth

import (
	"errors"
	"runtime"
)

// raisePriority is not implemented on this platform
func raisePriority() error {
	return errors.New("thread priority not supported on " + runtime.GOOS)
}
