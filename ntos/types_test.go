package ntos

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memview/inspect"
	"memview/memory"
	"memview/remote"
)

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(KPROCESS{}))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(PEB{}))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(LISTENTRY{}))
	assert.Equal(t, uintptr(136), unsafe.Sizeof(EPROCESS{}))

	// The PEB pointer sits at the end of the truncated layout.
	assert.Equal(t, uintptr(128), unsafe.Offsetof(EPROCESS{}.Peb))
}

func TestTypesAreRegistered(t *testing.T) {
	for _, name := range []string{"EPROCESS", "KPROCESS", "PEB", "PEBLdrData", "LISTENTRY"} {
		_, ok := inspect.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestPrintProcessFromDump(t *testing.T) {
	proc := EPROCESS{
		Pcb:             KPROCESS{DirectoryTableBase: 0x1AD000},
		UniqueProcessId: 4242,
		Peb:             remote.Pointer64[PEB]{Addr: 0x7FFD8000},
	}
	copy(proc.ImageFileName[:], "lsass.exe")

	peb := PEB{BeingDebugged: 1, ImageBaseAddress: 0x140000000}

	space := memory.NewSpace("test")
	space.AddRegion(0x40000000, memory.Bytes(proc), "r--p")
	space.AddRegion(0x7FFD8000, memory.Bytes(peb), "r--p")

	var buf bytes.Buffer
	err := inspect.PrintAt(&buf, space, 0x40000000, "EPROCESS", inspect.DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "EPROCESS")
	assert.Contains(t, out, "DirectoryTableBase: Address = 0x1AD000")
	assert.Contains(t, out, `ImageFileName: [15]uint8 = "lsass.exe"`)
	assert.Contains(t, out, "Peb-> PEB @ 0x7FFD8000")
	assert.Contains(t, out, "BeingDebugged: uint8 = 1 (0x1)")

	// Truncated dispatcher header is tagged away, padding is excluded.
	assert.NotContains(t, out, "Header")
	assert.NotContains(t, out, "_pad")

	// The null Ldr pointer prints its header but is not followed.
	assert.Contains(t, out, "Ldr-> PEBLdrData @ 0x0")
	assert.NotContains(t, out, "InLoadOrderModuleList")
}

func TestListEntryCycleStaysBounded(t *testing.T) {
	// Two-element circular ActiveProcessLinks list.
	a := LISTENTRY{
		Flink: remote.Pointer64[LISTENTRY]{Addr: 0x2000},
		Blink: remote.Pointer64[LISTENTRY]{Addr: 0x2000},
	}
	b := LISTENTRY{
		Flink: remote.Pointer64[LISTENTRY]{Addr: 0x1000},
		Blink: remote.Pointer64[LISTENTRY]{Addr: 0x1000},
	}

	space := memory.NewSpace("test")
	space.AddRegion(0x1000, memory.Bytes(a), "r--p")
	space.AddRegion(0x2000, memory.Bytes(b), "r--p")

	var buf bytes.Buffer
	inspect.PrintWithDepth(a, space, &buf, 3)

	// Terminates despite the cycle; both directions expand.
	assert.NotEmpty(t, buf.String())
}
