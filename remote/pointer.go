// Package remote provides typed pointer values into a remote address
// space. A remote pointer carries an address plus a phantom pointee type;
// it owns no memory and cannot be dereferenced without an explicit
// memory.Reader.
package remote

import (
	"fmt"
	"reflect"

	"memview/memory"
)

// Pointer is implemented by every remote pointer value. Field types that
// implement it are treated as pointer fields by the struct printer;
// everything else is plain data. This is a checked contract, not a
// type-name convention.
type Pointer interface {
	// Address returns the raw address held by the pointer.
	Address() memory.Address

	// Pointee returns the static type the pointer targets.
	Pointee() reflect.Type

	// ReadPointee reads one value of the pointee type at the pointer's
	// address. The returned value's dynamic type is Pointee().
	ReadPointee(r memory.Reader) (any, error)
}

// Pointer64 is a 64-bit pointer into a remote address space targeting T.
// Its raw image is exactly 8 little-endian bytes, so structs holding one
// survive raw reads via memory.ReadT.
type Pointer64[T any] struct {
	Addr memory.Address
}

var _ Pointer = Pointer64[uint64]{}

func (p Pointer64[T]) Address() memory.Address {
	return p.Addr
}

func (p Pointer64[T]) Pointee() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (p Pointer64[T]) ReadPointee(r memory.Reader) (any, error) {
	return memory.ReadT[T](r, p.Addr)
}

func (p Pointer64[T]) IsNull() bool {
	return p.Addr == 0
}

func (p Pointer64[T]) String() string {
	return fmt.Sprintf("0x%X", uint64(p.Addr))
}

// Pointer32 is a 32-bit pointer into a remote address space targeting T,
// for 32-bit targets. Raw image is 4 little-endian bytes.
type Pointer32[T any] struct {
	Addr uint32
}

var _ Pointer = Pointer32[uint32]{}

func (p Pointer32[T]) Address() memory.Address {
	return memory.Address(p.Addr)
}

func (p Pointer32[T]) Pointee() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (p Pointer32[T]) ReadPointee(r memory.Reader) (any, error) {
	return memory.ReadT[T](r, memory.Address(p.Addr))
}

func (p Pointer32[T]) IsNull() bool {
	return p.Addr == 0
}

func (p Pointer32[T]) String() string {
	return fmt.Sprintf("0x%X", p.Addr)
}
