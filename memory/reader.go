package memory

// Reader is the capability for reading from a remote address space. It is
// the only contract the rest of this module needs from a memory backend:
// a dump loaded from disk, a live process, or a hand-built Space all
// satisfy it the same way.
type Reader interface {
	// ReadMemory reads size bytes starting at addr.
	ReadMemory(addr Address, size Size) ([]byte, error)

	// IsValidAddress reports whether addr falls inside a mapped, readable
	// region of the address space.
	IsValidAddress(addr Address) bool
}
