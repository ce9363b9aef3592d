//go:build linux

package synth

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// realtimeNice is the niceness requested for the audio thread
const realtimeNice = -11

// raisePriority lowers the niceness of the calling thread. On Linux nice
// values are per thread, so this only affects the locked audio thread.
// Needs CAP_SYS_NICE or a suitable RLIMIT_NICE.
func raisePriority() error {
	tid := unix.Gettid()
	if err := unix.Setpriority(unix.PRIO_PROCESS, tid, realtimeNice); err != nil {
		return fmt.Errorf("setpriority(tid=%d, %d): %w", tid, realtimeNice, err)
	}
	return nil
}
