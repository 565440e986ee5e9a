// Package ntos carries simplified Windows kernel structure layouts used
// as fixtures for pointer-following inspection of memory dumps. The
// layouts are truncated: field offsets are kept plausible with explicit
// _pad fields, but nothing past the fields of interest is modeled.
package ntos

import (
	"memview/inspect"
	"memview/memory"
	"memview/remote"
)

// KPROCESS is the scheduler part embedded at the top of EPROCESS.
type KPROCESS struct {
	Header             [24]byte `mem:"skip"` // DISPATCHER_HEADER
	DirectoryTableBase memory.Address
}

// PEB is the userland process environment block.
type PEB struct {
	InheritedAddressSpace    uint8
	ReadImageFileExecOptions uint8
	BeingDebugged            uint8
	BitField                 uint8
	_pad0                    [4]byte
	Mutant                   memory.Address
	ImageBaseAddress         memory.Address
	Ldr                      remote.Pointer64[PEBLdrData]
}

// PEBLdrData heads the loader's module lists.
type PEBLdrData struct {
	Length                uint32
	Initialized           uint8
	_pad0                 [3]byte
	SsHandle              memory.Address
	InLoadOrderModuleList LISTENTRY
}

// LISTENTRY is a doubly linked list node. Flink/Blink address the next
// node's own LISTENTRY, so following them lands mid-struct by design of
// the kernel lists.
type LISTENTRY struct {
	Flink remote.Pointer64[LISTENTRY]
	Blink remote.Pointer64[LISTENTRY]
}

// EPROCESS is the kernel process object, truncated to the inspection
// targets: the embedded KPROCESS and the PEB pointer.
type EPROCESS struct {
	Pcb                KPROCESS
	_pad0              [16]byte
	UniqueProcessId    uint64
	ActiveProcessLinks LISTENTRY
	_pad1              [32]byte
	ImageFileName      [15]byte `mem:"cstr"`
	_pad2              [9]byte
	Peb                remote.Pointer64[PEB]
}

func init() {
	inspect.MustRegister[EPROCESS]()
	inspect.MustRegister[KPROCESS]()
	inspect.MustRegister[PEB]()
	inspect.MustRegister[PEBLdrData]()
	inspect.MustRegister[LISTENTRY]()
}
