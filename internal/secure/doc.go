// Package secure protects secrets at rest in memory.
//
// It wraps the memguard library: sealed values are encrypted with
// XSalsa20Poly1305, their pages are mlocked to keep them out of swap, and
// guard pages catch overflows into the plaintext while it is open.
//
// The package covers the half of the secret lifecycle that pkg/wipe does
// not. wipe clears a live working value the moment its scope ends; secure
// keeps a value encrypted between uses, so plaintext exists only inside a
// Reveal callback.
//
// # Usage
//
// Seal consumes the plaintext (the input slice is wiped) and Reveal grants
// scoped access:
//
//	sealed := secure.Seal(keyBytes) // keyBytes reads as zeros from here on
//	defer sealed.Destroy()
//
//	err := sealed.Reveal(func(plaintext []byte) error {
//	    return useKey(plaintext) // valid only inside this call
//	})
//
// # Platform Behavior
//
// Memory locking varies by platform:
//
//   - Linux: requires RLIMIT_MEMLOCK headroom
//   - macOS: works out of the box
//   - Windows: uses VirtualLock
//
// When mlock fails, memguard degrades to standard allocation; secrets stay
// encrypted at rest but may reach swap under memory pressure. The doctor
// command reports which behavior the current system gets.
//
// # Security Guarantees
//
// Sealed values do not appear as plaintext in core dumps and are not
// swapped to disk when mlock is available. Plaintext produced by Reveal is
// zeroed as soon as the callback returns.
//
// It does NOT protect against:
//
//   - Attackers with root access to the running process
//   - Hardware-level attacks (cold boot, DMA)
//   - Side channels such as Spectre/Meltdown
package secure
