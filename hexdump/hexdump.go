// Package hexdump renders raw bytes pulled out of a remote address space,
// with an optional pointer preview column validated against the space's
// memory map.
package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/Moonlight-Companies/gologger/coloransi"

	"memview/memory"
)

// Options customize the hexdump output.
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// GroupSize defines the grouping of bytes (usually 1, 2, 4, or 8)
	GroupSize int

	// ShowASCII determines whether to show the ASCII representation
	ShowASCII bool

	// ShowOffset determines whether to show the offset/address column
	ShowOffset bool

	// StartOffset is the address the dumped bytes were read from
	StartOffset memory.Address

	// OffsetWidth is the width of the offset column in hex digits
	OffsetWidth int

	// Color enables ANSI colors
	Color bool

	// ShowPointers previews each aligned 8-byte word as a pointer when it
	// validates against Reader's memory map
	ShowPointers bool

	// Reader is the address space used for pointer validation
	Reader memory.Reader
}

// DefaultOptions returns the default hexdump options.
func DefaultOptions() Options {
	return Options{
		BytesPerLine: 16,
		GroupSize:    1,
		ShowASCII:    true,
		ShowOffset:   true,
		OffsetWidth:  8,
		Color:        true,
	}
}

// Dump renders data as a string.
func Dump(data []byte, opts Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, opts)
	return buffer.String()
}

// DumpToWriter writes the hexdump of data to w.
func DumpToWriter(w io.Writer, data []byte, opts Options) {
	if opts.BytesPerLine <= 0 {
		opts.BytesPerLine = 16
	}
	if opts.GroupSize <= 0 {
		opts.GroupSize = 1
	}
	if opts.OffsetWidth <= 0 {
		opts.OffsetWidth = 8
	}

	for offset := 0; offset < len(data); offset += opts.BytesPerLine {
		end := min(offset+opts.BytesPerLine, len(data))
		formatLine(w, data[offset:end], opts.StartOffset+memory.Address(offset), opts)
	}
}

func formatLine(w io.Writer, line []byte, addr memory.Address, opts Options) {
	if opts.ShowOffset {
		offsetStr := fmt.Sprintf("%0"+strconv.Itoa(opts.OffsetWidth)+"x", uint64(addr))
		fmt.Fprint(w, paint(opts, coloransi.Cyan, offsetStr), "  ")
	}

	fmt.Fprint(w, strings.Join(hexGroups(line, opts), " "))

	// Keep the ASCII column aligned on a short trailing line.
	if missing := opts.BytesPerLine - len(line); missing > 0 {
		fullGroups := (opts.BytesPerLine + opts.GroupSize - 1) / opts.GroupSize
		curGroups := (len(line) + opts.GroupSize - 1) / opts.GroupSize
		padding := missing*2 + (fullGroups - curGroups)
		fmt.Fprint(w, strings.Repeat(" ", padding))
	}

	if opts.ShowASCII {
		fmt.Fprint(w, " | ")
		for _, b := range line {
			switch {
			case b == 0:
				fmt.Fprint(w, paint(opts, coloransi.BrightBlack, "."))
			case !unicode.IsPrint(rune(b)):
				fmt.Fprint(w, paint(opts, coloransi.BrightBlack, "."))
			default:
				fmt.Fprint(w, paint(opts, coloransi.White, string(rune(b))))
			}
		}
	}

	if opts.ShowPointers && opts.Reader != nil {
		var ptrs []string
		for i := 0; i+8 <= len(line); i += 8 {
			ptr := binary.LittleEndian.Uint64(line[i : i+8])
			if ptr != 0 && opts.Reader.IsValidAddress(memory.Address(ptr)) {
				ptrs = append(ptrs, paint(opts, coloransi.Yellow, fmt.Sprintf("0x%x", ptr)))
			}
		}
		if len(ptrs) > 0 {
			fmt.Fprint(w, " | ", strings.Join(ptrs, " "))
		}
	}

	fmt.Fprintln(w)
}

func hexGroups(line []byte, opts Options) []string {
	var groups []string
	for i := 0; i < len(line); i += opts.GroupSize {
		end := min(i+opts.GroupSize, len(line))
		var sb strings.Builder
		for _, b := range line[i:end] {
			fmt.Fprintf(&sb, "%02x", b)
		}
		if allZero(line[i:end]) {
			groups = append(groups, paint(opts, coloransi.BrightBlack, sb.String()))
		} else {
			groups = append(groups, paint(opts, coloransi.Green, sb.String()))
		}
	}
	return groups
}

func allZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

func paint(opts Options, color coloransi.ColorCode, s string) string {
	if !opts.Color {
		return s
	}
	return coloransi.Foreground(color, s)
}
