// Package wipe clears sensitive values from memory when their scope ends.
//
// The package has two layers. The primitives (Bytes, Value, Slice) overwrite
// a designated region with zeros immediately. The Guard ties that overwrite
// to a scope: it takes ownership of a value's storage at construction and
// zeroes every byte of it on Destroy, which callers normally schedule with
// defer at the top of the scope that works with the secret.
//
// # Usage
//
// Wrap a directly held value and clear it at scope exit:
//
//	func deriveAndUse(material [32]byte) {
//	    key := wipe.Own(material)
//	    defer key.Destroy()
//
//	    sign(key.Ptr()) // use the key in place; no copies made
//	}
//
// Guard a value that lives elsewhere (the indirect-owner case):
//
//	var session [16]byte
//	g := wipe.At(&session)
//	defer g.Destroy()
//
// Any type exposing one canonical slot can be guarded through the Target
// interface; pkg/owned provides the adapter that gives a directly held value
// that shape without copying it anywhere.
//
// # Clearing guarantees
//
// The byte overwrite itself delegates to memguard.WipeBytes, whose contract
// is that the stores are not eliminated by the compiler as dead writes. This
// package adds the addressing half: a guarded target has exactly one
// canonical address and byte length, captured at construction, so the wipe
// reaches the value's real storage rather than a copy.
//
// Only types fully described by their raw bytes may be cleared. Types
// embedding pointers, slices, maps, strings, channels, funcs or interfaces
// are rejected with a panic at guard construction: zeroing their bytes would
// corrupt the program's view of the heap while leaving the pointed-to data
// intact.
//
// # What this does NOT protect against
//
//   - Copies made before the guard took over (arguments, registers, stack
//     slots the compiler spilled). Wrap secrets as early as possible.
//   - The garbage collector relocating a stack-allocated value. Guarded
//     owners are referenced from the guard and therefore heap-allocated,
//     where the Go runtime does not move allocations.
//   - An attacker who can read process memory while the secret is live.
//     For encryption at rest in memory, see internal/secure's enclave.
package wipe
