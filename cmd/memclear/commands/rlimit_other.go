//go:build !unix

package commands

func rlimitMemlock() (soft uint64, unlimited, ok bool) {
	return 0, false, false
}
