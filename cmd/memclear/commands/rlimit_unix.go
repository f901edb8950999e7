//go:build unix

package commands

import "golang.org/x/sys/unix"

// rlimitMemlock reports the soft RLIMIT_MEMLOCK value, which caps how much
// memory mlock can pin for this process.
func rlimitMemlock() (soft uint64, unlimited, ok bool) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rl); err != nil {
		return 0, false, false
	}
	return uint64(rl.Cur), uint64(rl.Cur) == uint64(unix.RLIM_INFINITY), true
}
