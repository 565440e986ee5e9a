package inspect

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"

	"memview/memory"
	"memview/remote"
)

// FormatFunc is a callback to format/colorize cell values
type FormatFunc func(value string) string

// ColumnSpec defines a column's properties
type ColumnSpec struct {
	Header     string
	BlankValue string     // Value to show for empty cells (default: "-")
	FormatFunc FormatFunc // Optional formatter/colorizer
	MinWidth   int        // Minimum column width
}

// Table renders rows of cell text under fixed headers, padding by the
// visible (ANSI-stripped) width of each cell.
type Table struct {
	columns []ColumnSpec
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given column specifications
func NewTable(cols ...ColumnSpec) *Table {
	t := &Table{
		columns: cols,
		rows:    make([][]string, 0),
		widths:  make([]int, len(cols)),
	}

	for i, col := range cols {
		t.widths[i] = max(col.MinWidth, len(col.Header))
	}

	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
	}

	return t
}

// AddRow adds a row of data to the table
func (t *Table) AddRow(data ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(data) && data[i] != "" {
			row[i] = data[i]
		} else {
			row[i] = t.columns[i].BlankValue
		}
		if visLen := visibleLength(row[i]); visLen > t.widths[i] {
			t.widths[i] = visLen
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table to the given writer
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = t.pad(col.Header, t.widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.Join(headers, " ")); err != nil {
		return err
	}

	sep := make([]string, len(t.columns))
	for i := range sep {
		sep[i] = strings.Repeat("-", t.widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.Join(sep, " ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		formatted := make([]string, len(row))
		for i, val := range row {
			display := val
			if t.columns[i].FormatFunc != nil {
				display = t.columns[i].FormatFunc(val)
			}
			formatted[i] = t.pad(display, t.widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(formatted, " ")); err != nil {
			return err
		}
	}

	return nil
}

// pad pads a string to the given width using its visible length
func (t *Table) pad(s string, width int) string {
	visibleLen := visibleLength(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

// visibleLength calculates the length of a string excluding ANSI codes
func visibleLength(s string) int {
	length := 0
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			length++
		}
	}
	return length
}

// PrintTable renders one struct as a Field/Offset/Value/AsPtr/Tags table.
// Offsets come from the struct layout; the AsPtr column checks every
// pointer-sized field against the reader's memory map. Pointer fields are
// not followed here, that is Fprint's job.
func PrintTable(v any, r memory.Reader, w io.Writer) {
	isValidPtr := func(addr uint64) bool {
		if r == nil || addr == 0 {
			return false
		}
		return r.IsValidAddress(memory.Address(addr))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			fmt.Fprintln(w, "<nil pointer>")
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		fmt.Fprintf(w, "inspect: expected struct or *struct, got %s\n", rv.Kind())
		return
	}

	sd, err := Describe(rv.Type())
	if err != nil {
		fmt.Fprintf(w, "<%v>\n", err)
		return
	}

	fmt.Fprintf(w, "=== %s ===\n", sd.Name)
	fmt.Fprintf(w, "Size: 0x%X (%d bytes)\n\n", rv.Type().Size(), rv.Type().Size())

	table := NewTable(
		ColumnSpec{Header: "Field", MinWidth: 8},
		ColumnSpec{Header: "Offset", MinWidth: 10},
		ColumnSpec{
			Header:   "Value",
			MinWidth: 6,
			FormatFunc: func(s string) string {
				if s == "0 (0x0)" {
					return coloransi.Foreground(coloransi.CreateRGB(64, 64, 64), s)
				}
				return coloransi.Foreground(coloransi.ColorLimeGreen, s)
			},
		},
		ColumnSpec{
			Header:     "AsPtr",
			MinWidth:   6,
			BlankValue: "-",
			FormatFunc: func(s string) string {
				if strings.Contains(s, "✓") {
					return coloransi.Foreground(coloransi.ColorLimeGreen, s)
				}
				if strings.Contains(s, "×") {
					return coloransi.Foreground(coloransi.BrightRed, s)
				}
				return coloransi.Foreground(coloransi.White, s)
			},
		},
		ColumnSpec{Header: "Tags", MinWidth: 6, BlankValue: "-"},
	)

	sv := addressableCopy(rv)
	for _, fd := range sd.Fields {
		fv := fieldValue(sv, fd)
		offsetStr := fmt.Sprintf("0x%04X", fd.Offset)

		var valueStr, asPtr string
		switch fd.Class {
		case FieldRemotePointer:
			ptr := fv.Interface().(remote.Pointer)
			addr := uint64(ptr.Address())
			valueStr = fmt.Sprintf("0x%016X -> %s", addr, typeName(fd.Target))
			asPtr = ptrMark(isValidPtr, addr)
		case FieldStruct:
			valueStr = fmt.Sprintf("{%s}", typeName(fd.Type))
		default:
			valueStr = formatValue(fv, fd)
			switch fv.Kind() {
			case reflect.Uint, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
				asPtr = ptrMark(isValidPtr, fv.Uint())
			}
		}

		table.AddRow(fd.Name, offsetStr, valueStr, asPtr, fd.Tag)
	}

	table.Render(w)
	fmt.Fprintln(w)
}

func ptrMark(isValidPtr func(uint64) bool, addr uint64) string {
	if addr == 0 {
		return ""
	}
	if isValidPtr(addr) {
		return fmt.Sprintf("0x%X ✓", addr)
	}
	return fmt.Sprintf("0x%X ×", addr)
}
