// Package owned adapts a value stored inline into the owner shape expected by
// the scoped clearing utilities in pkg/wipe.
//
// The wipe.Guard mechanism is written against an indirect owner: something
// that exposes exactly one canonical dereference target through Ptr, so the
// guard can compute a single address and byte length to erase at scope exit.
// A plain value cannot satisfy that contract: it IS the data rather than a
// handle to it, and Go offers no way to ask "a V that dereferences to
// itself". Value[V] collapses the distinction: it is the target's storage
// while presenting the owner interface, so generic code written against
// "something with a Ptr() *V" accepts a directly held value without the data
// ever being copied to a second location.
//
// # Value semantics
//
// Value[V] is a bare single-field container with no synchronization and no
// indirection. Copying a Value copies the contained V, producing a second,
// independent slot. That is fine right up until a pointer into the container
// has been handed out: after Ptr has been called, the container must stay
// put, or the pointer (and any clearing scheduled against it) refers to an
// abandoned copy. wipe.Guard enforces this structurally by keeping the owner
// behind a pointer for its whole lifetime; code using Value directly carries
// the same obligation itself.
//
// The zero Value[V] is valid and holds V's zero value, which makes it a
// natural placeholder to declare first and fill with sensitive data later:
//
//	var key owned.Value[[32]byte]
//	copy(key.Ptr()[:], material)
//
// # Delegated behavior
//
// Equality, ordering, hashing and formatting are all defined by the contained
// value, never by container identity. Value[V] is comparable exactly when V
// is, so a == b holds iff the contents are equal and Value[V] works as a map
// key interchangeably with bare V. Formatting forwards every verb, flag and
// width to the wrapped value, so output is indistinguishable from formatting
// V itself.
package owned

import (
	"cmp"
	"fmt"
	"hash/maphash"
)

// Value holds exactly one V in its own storage while behaving, to generic
// code, like a pointer-style owner of that V.
//
// The contained V should be a plain data value: one whose full meaning is
// captured by its raw bytes, with no embedded pointers or handles. That
// obligation is not enforced here, since construction is total; the clearing
// layer in pkg/wipe rejects pointer-carrying types when a Value is placed
// under a guard.
type Value[V any] struct {
	v V
}

// New moves v into a fresh container. The container holds its own copy;
// callers whose original binding is sensitive should clear it (for byte
// slices, wipe.Slice) once the container has taken over.
func New[V any](v V) Value[V] {
	return Value[V]{v: v}
}

// Zero returns a container holding V's zero value. Equivalent to declaring a
// zero Value[V]; provided for call sites that want the placeholder intent
// spelled out.
func Zero[V any]() Value[V] {
	return Value[V]{}
}

// Ptr returns the canonical dereference target: a pointer into the
// container's single slot. Successive calls return the identical address for
// as long as the container itself is not copied or moved. Go's one pointer
// type serves both the read and the write half of the owner contract.
//
// This is the accessor the clearing layer uses to locate the bytes it must
// erase.
func (o *Value[V]) Ptr() *V {
	return &o.v
}

// Get returns a copy of the contained value.
func (o Value[V]) Get() V {
	return o.v
}

// Set overwrites the contained value in place.
func (o *Value[V]) Set(v V) {
	o.v = v
}

// Equal reports whether two containers hold equal values. For comparable V
// the built-in a == b comparison is equivalent; Equal exists for call sites
// that want the delegation spelled out.
func Equal[V comparable](a, b Value[V]) bool {
	return a.v == b.v
}

// Compare orders two containers by their contained values, following
// cmp.Compare. Defined exactly for the types V that are themselves ordered.
func Compare[V cmp.Ordered](a, b Value[V]) int {
	return cmp.Compare(a.v, b.v)
}

// Less reports whether a's contained value orders before b's.
func Less[V cmp.Ordered](a, b Value[V]) bool {
	return a.v < b.v
}

// Hash returns the hash of the contained value under the given seed, via
// maphash.Comparable. Containers holding equal values hash identically no
// matter where either container lives, and the hash equals that of the bare
// value.
func Hash[V comparable](seed maphash.Seed, v Value[V]) uint64 {
	return maphash.Comparable(seed, v.v)
}

// Format implements fmt.Formatter by forwarding the verb and all of its
// flags, width and precision to the contained value, so %v, %+v, %#v, %d,
// %x and friends print exactly what they would print for bare V.
func (o Value[V]) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, fmt.FormatString(s, verb), o.v)
}

// String returns the contained value's default formatting.
func (o Value[V]) String() string {
	return fmt.Sprint(o.v)
}
