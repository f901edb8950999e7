package wipe

import (
	"fmt"
	"reflect"

	"github.com/awnumar/memguard"

	"github.com/systmms/memclear/internal/memutil"
	"github.com/systmms/memclear/internal/telemetry"
)

// Bytes overwrites every byte of b with zero. It is safe to call with a nil
// or empty slice. The underlying array is modified, so other slices sharing
// it observe the zeros too.
func Bytes(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
	telemetry.RecordWipe(telemetry.KindBytes, len(b))
}

// Value overwrites the storage of *p with zeros. The type must be
// pointer-free; Value panics otherwise. A nil pointer is a no-op.
func Value[V any](p *V) {
	if p == nil {
		return
	}
	mustPointerFree[V]("wipe.Value")
	b := memutil.ByteView(p)
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
	telemetry.RecordWipe(telemetry.KindValue, len(b))
}

// Slice overwrites the backing array of s, up to its length, with zeros.
// The element type must be pointer-free; Slice panics otherwise. Elements
// between len(s) and cap(s) are left untouched.
func Slice[E any](s []E) {
	if len(s) == 0 {
		return
	}
	mustPointerFree[E]("wipe.Slice")
	b := memutil.SliceByteView(s)
	memguard.WipeBytes(b)
	telemetry.RecordWipe(telemetry.KindSlice, len(b))
}

// PointerFree reports whether values of type V are fully described by their
// raw bytes and may therefore be cleared byte-wise. Numeric types, bools,
// and arrays and structs built only from those qualify; anything carrying a
// pointer (including strings, slices and maps) does not.
func PointerFree[V any]() bool {
	return memutil.TypePointerFree(reflect.TypeFor[V]())
}

func mustPointerFree[V any](op string) {
	t := reflect.TypeFor[V]()
	if !memutil.TypePointerFree(t) {
		panic(fmt.Sprintf("%s: %s contains pointers and cannot be cleared byte-wise", op, t))
	}
}
