package wipe

import (
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/systmms/memclear/internal/memutil"
	"github.com/systmms/memclear/internal/telemetry"
	"github.com/systmms/memclear/pkg/owned"
)

// Target is the owner contract a Guard clears through. Ptr must return the
// address of the value's one canonical storage slot, and must return the
// same address on every call for the lifetime of the owner.
type Target[V any] interface {
	Ptr() *V
}

// The owned-value adapter satisfies the owner contract.
var _ Target[int] = (*owned.Value[int])(nil)

// Guard zeroes a target's storage when Destroy is called. Construct one with
// Own, At or Hold and schedule the wipe with defer:
//
//	key := wipe.Own(material)
//	defer key.Destroy()
//
// Accessors keep working after Destroy; they observe the zeroed value.
type Guard[V any] struct {
	owner Target[V]

	mu        sync.Mutex
	destroyed bool
}

// Hold guards an existing owner. It panics if t is nil or if V contains
// pointers and therefore cannot be cleared byte-wise.
func Hold[V any](t Target[V]) *Guard[V] {
	mustPointerFree[V]("wipe.Hold")
	if t == nil {
		panic("wipe.Hold: nil target")
	}
	return &Guard[V]{owner: t}
}

// Own copies v into a fresh owned slot and guards that slot. The slot is
// referenced only by the returned guard, so the copy inside it is the single
// live instance the wipe needs to reach.
func Own[V any](v V) *Guard[V] {
	o := owned.New(v)
	return Hold[V](&o)
}

// At guards a value that lives at p, owned by the caller. It panics if p is
// nil: a guard over no storage is a programming error, not a no-op.
func At[V any](p *V) *Guard[V] {
	if p == nil {
		panic("wipe.At: nil location")
	}
	return Hold[V](ptrTarget[V]{p})
}

// ptrTarget adapts a bare pointer to the owner contract for At.
type ptrTarget[V any] struct {
	p *V
}

func (t ptrTarget[V]) Ptr() *V { return t.p }

// Ptr returns the address of the guarded value. Reads and writes through it
// operate on the storage Destroy will clear.
func (g *Guard[V]) Ptr() *V {
	return g.owner.Ptr()
}

// Get returns a copy of the guarded value. The copy is not tracked; prefer
// Ptr when the value must not leak into unmanaged memory.
func (g *Guard[V]) Get() V {
	return *g.owner.Ptr()
}

// Set overwrites the guarded value in place.
func (g *Guard[V]) Set(v V) {
	*g.owner.Ptr() = v
}

// Destroy zeroes every byte of the guarded storage. It is idempotent and
// safe for concurrent use; only the first call wipes.
func (g *Guard[V]) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return
	}
	g.destroyed = true

	b := memutil.ByteView(g.owner.Ptr())
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
	telemetry.RecordWipe(telemetry.KindGuard, len(b))
}

// Destroyed reports whether Destroy has run.
func (g *Guard[V]) Destroyed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyed
}

// String implements fmt.Stringer. The guarded value is never printed.
func (g *Guard[V]) String() string {
	return "[REDACTED]"
}

// Format implements fmt.Formatter so that every verb, including %#v and %d,
// prints the redaction marker instead of walking the guard's fields.
func (g *Guard[V]) Format(s fmt.State, verb rune) {
	io.WriteString(s, "[REDACTED]")
}
