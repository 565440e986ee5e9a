// Package memory models a remote address space: addresses, sizes, the
// read capability used to pull typed values out of it, and an in-memory
// Space implementation backed by mapped regions.
package memory

import (
	"errors"
	"fmt"
)

// Address represents an address within a remote address space. It is a
// plain value; dereferencing it requires an explicit Reader.
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Size represents a size of a memory region or read request.
type Size uint

func (s Size) String() string {
	return fmt.Sprintf("%d bytes", uint(s))
}

var (
	// ErrAddressNotMapped is returned when an address is not found within
	// any mapped region of the address space.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrNotOpen is returned when an operation requiring an open address
	// space is attempted before it has been opened or after it was closed.
	ErrNotOpen = errors.New("address space not open")

	// ErrShortRead is returned when a read crosses out of the backing data
	// for a mapped region.
	ErrShortRead = errors.New("read exceeds region bounds")
)
