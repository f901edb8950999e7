package secure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned by Reveal after the sealed value has been
// destroyed.
var ErrDestroyed = errors.New("secure: sealed value destroyed")

// Sealed holds a secret encrypted at rest in memory. It wraps
// memguard.Enclave, which encrypts the bytes with XSalsa20Poly1305 and
// attempts to mlock the backing pages so they cannot be swapped to disk.
//
// Sealed complements pkg/wipe: wipe clears live working values at scope
// exit, Sealed protects values between uses so plaintext only exists for
// the duration of a Reveal call.
type Sealed struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy calls and blocks reuse after.
	destroyed bool
}

// Seal copies data into an encrypted enclave and wipes the caller's
// plaintext. The input slice reads as zeros after Seal returns; treat the
// call as consuming it.
//
// If mlock is unavailable (for example due to RLIMIT_MEMLOCK), memguard
// degrades to standard allocation and the secret stays encrypted at rest
// without swap protection.
func Seal(data []byte) *Sealed {
	if len(data) == 0 {
		// memguard rejects zero-length enclaves; an empty secret needs
		// no ciphertext.
		return &Sealed{}
	}
	// memguard.NewEnclave copies then wipes the source buffer, so the
	// plaintext handed to us does not linger in the caller's slice.
	return &Sealed{enclave: memguard.NewEnclave(data)}
}

// Reveal decrypts the sealed bytes into a locked buffer, passes the
// plaintext to fn, and destroys the buffer when fn returns. The slice given
// to fn is only valid during the call; callers must not retain it.
//
//	err := sealed.Reveal(func(plaintext []byte) error {
//	    return writeKey(w, plaintext)
//	})
func (s *Sealed) Reveal(fn func(plaintext []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return ErrDestroyed
	}
	if s.enclave == nil {
		return fn(nil)
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return fmt.Errorf("opening enclave: %w", err)
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// Size returns the length of the sealed plaintext, or 0 after Destroy.
func (s *Sealed) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return 0
	}
	return s.enclave.Size()
}

// Destroy drops the enclave and marks the value unusable. The encrypted
// ciphertext is safe to leave for the garbage collector; for full cleanup
// of all memguard state at process exit call memguard.Purge in main.
//
// Destroy is idempotent.
func (s *Sealed) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}
