package memory

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// SizeOf returns the in-memory size of T.
func SizeOf[T any]() Size {
	var t T
	return Size(unsafe.Sizeof(t))
}

// Bytes serializes a POD value into its raw in-memory byte image. T must
// be POD (no Go-managed references) for the bytes to be meaningful
// outside the process.
func Bytes[T any](v T) []byte {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out
}

// ReadT reads a value of type T from the address space at addr. T must be
// POD: it and all of its fields contain no Go pointers.
func ReadT[T any](r Reader, addr Address) (T, error) {
	var zero T

	rv, err := ReadValue(r, addr, reflect.TypeOf(zero))
	if err != nil {
		return zero, err
	}

	return rv.Interface().(T), nil
}

// ReadValue reads a value of the given type from the address space at
// addr. The returned value is addressable.
func ReadValue(r Reader, addr Address, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, errors.New("ReadValue: nil type")
	}
	if typeHasGoPointers(t) {
		return reflect.Value{}, fmt.Errorf("ReadValue: %s contains Go pointers; not POD-safe", t)
	}

	size := int(t.Size())
	if size == 0 {
		return reflect.Value{}, errors.New("ReadValue: size of type is zero")
	}

	data, err := r.ReadMemory(addr, Size(size))
	if err != nil {
		return reflect.Value{}, err
	}
	if len(data) < size {
		return reflect.Value{}, ErrShortRead
	}

	pv := reflect.New(t)
	dst := unsafe.Slice((*byte)(pv.UnsafePointer()), size)
	copy(dst, data[:size])

	return pv.Elem(), nil
}

// typeHasGoPointers reports whether t (recursively) contains any field the
// Go runtime would trace. Raw bytes copied into such a type could crash
// the garbage collector.
func typeHasGoPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func,
		reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasGoPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasGoPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// bool, ints, uints, floats, complex, etc.
		return false
	}
}
