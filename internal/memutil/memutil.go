// Package memutil provides the raw-memory helpers behind the wipe package:
// reinterpreting a value's storage as bytes, and deciding whether a type's
// full meaning is captured by those bytes.
//
// This is the only package in the module that imports unsafe. Everything here
// assumes the caller keeps the viewed value alive for the lifetime of the
// returned slice.
package memutil

import (
	"reflect"
	"sync"
	"unsafe"
)

// ByteView reinterprets the storage behind p as a byte slice of exactly
// unsafe.Sizeof(*p) bytes. The slice aliases p's memory: writes through the
// slice are writes to *p. Returns nil for zero-sized types.
func ByteView[V any](p *V) []byte {
	size := unsafe.Sizeof(*p)
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
}

// SliceByteView reinterprets the backing storage of the first len(s) elements
// of s as a byte slice. The slice aliases s's backing array.
func SliceByteView[E any](s []E) []byte {
	if len(s) == 0 {
		return nil
	}
	size := uintptr(len(s)) * unsafe.Sizeof(s[0])
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), size)
}

// pointerFreeCache memoizes TypePointerFree per type. Types are immutable and
// few in practice, so the map only ever grows.
var pointerFreeCache sync.Map // reflect.Type -> bool

// TypePointerFree reports whether a value of type t is fully described by its
// raw bytes: it embeds no pointers, directly or through nested fields.
// Overwriting such a value's bytes destroys every copy of the information it
// holds; overwriting a pointer-carrying value would leave the pointee intact
// and corrupt the runtime's view of the heap.
//
// Strings count as pointer-carrying: their bytes include a data pointer and
// the pointed-to bytes would survive a wipe.
func TypePointerFree(t reflect.Type) bool {
	if cached, ok := pointerFreeCache.Load(t); ok {
		return cached.(bool)
	}
	free := pointerFree(t)
	pointerFreeCache.Store(t, free)
	return free
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Ptr, UnsafePointer, Slice, Map, Chan, Func, Interface, String.
		return false
	}
}
