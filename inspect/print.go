package inspect

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"unsafe"

	"memview/memory"
	"memview/remote"
)

const (
	// DefaultDepth is the default number of chained pointer dereferences a
	// single print call will perform.
	DefaultDepth = 5

	// DefaultExcludeMarker hides fields whose name contains it.
	DefaultExcludeMarker = "_pad"
)

// Options control one print call.
type Options struct {
	// Depth is the remaining pointer-follow budget. Structural recursion
	// into struct-valued fields does not consume it.
	Depth uint

	// ExcludeMarker: fields whose name contains this substring produce no
	// output at all.
	ExcludeMarker string

	// Indent is one level of nesting.
	Indent string
}

// DefaultOptions returns the process-wide defaults: depth 5, "_pad"
// exclusion, two-space indent.
func DefaultOptions() Options {
	return Options{
		Depth:         DefaultDepth,
		ExcludeMarker: DefaultExcludeMarker,
		Indent:        "  ",
	}
}

// Print writes v without a memory reader: pointer fields print their
// address header only and are never followed.
func Print[T any](v T, w io.Writer) {
	Fprint(w, v, nil, DefaultOptions())
}

// PrintWithPointerReading writes v, dereferencing pointer fields through r
// up to the default depth.
func PrintWithPointerReading[T any](v T, r memory.Reader, w io.Writer) {
	Fprint(w, v, r, DefaultOptions())
}

// PrintWithDepth writes v, dereferencing pointer fields through r up to
// the given depth.
func PrintWithDepth[T any](v T, r memory.Reader, w io.Writer, depth uint) {
	opts := DefaultOptions()
	opts.Depth = depth
	Fprint(w, v, r, opts)
}

// Fprint is the non-generic entry point behind the typed wrappers. v must
// be a struct or pointer to struct.
func Fprint(w io.Writer, v any, r memory.Reader, opts Options) {
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

	if opts.Indent == "" {
		opts.Indent = "  "
	}

	fmt.Fprintln(w, typeName(rv.Type()))
	printFields(w, addressableCopy(rv), r, opts.Depth, 1, opts)
}

// PrintAt reads a value of the named registered type at addr and prints
// it. The CLI-facing variant of PrintWithDepth.
func PrintAt(w io.Writer, r memory.Reader, addr memory.Address, name string, opts Options) error {
	sd, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("inspect: no registered struct named %q", name)
	}

	rv, err := memory.ReadValue(r, addr, sd.Type)
	if err != nil {
		return fmt.Errorf("inspect: failed to read %s at %s: %w", name, addr, err)
	}

	Fprint(w, rv.Interface(), r, opts)
	return nil
}

// printFields walks one struct's fields in declaration order. depth is the
// remaining pointer-follow budget, level the indentation.
func printFields(w io.Writer, sv reflect.Value, r memory.Reader, depth uint, level int, opts Options) {
	sd, err := Describe(sv.Type())
	if err != nil {
		fmt.Fprintf(w, "%s<%v>\n", strings.Repeat(opts.Indent, level), err)
		return
	}

	ind := strings.Repeat(opts.Indent, level)

	for _, fd := range sd.Fields {
		if fd.skip || (opts.ExcludeMarker != "" && strings.Contains(fd.Name, opts.ExcludeMarker)) {
			continue
		}

		fv := fieldValue(sv, fd)

		switch fd.Class {
		case FieldStruct:
			fmt.Fprintf(w, "%s%s: %s\n", ind, fd.Name, typeName(fd.Type))
			printFields(w, fv, r, depth, level+1, opts)

		case FieldRemotePointer:
			ptr := fv.Interface().(remote.Pointer)
			fmt.Fprintf(w, "%s%s-> %s @ %s\n", ind, fd.Name, typeName(fd.Target), ptr.Address())

			// No reader is the same as no remaining depth. Null pointers
			// are never followed.
			if depth == 0 || r == nil || ptr.Address() == 0 {
				continue
			}

			pointee, err := ptr.ReadPointee(r)
			if err != nil {
				fmt.Fprintf(w, "%s%s<read error: %v>\n", ind, opts.Indent, err)
				continue
			}

			pv := reflect.ValueOf(pointee)
			if pv.Kind() == reflect.Struct {
				printFields(w, addressableCopy(pv), r, depth-1, level+1, opts)
			} else {
				fmt.Fprintf(w, "%s%s%s = %s\n", ind, opts.Indent, typeName(pv.Type()), formatValue(pv, FieldDescriptor{}))
			}

		default:
			fmt.Fprintf(w, "%s%s: %s = %s\n", ind, fd.Name, typeName(fd.Type), formatValue(fv, fd))
		}
	}
}

// fieldValue returns the field's value, routing around the CanInterface
// restriction for unexported fields. sv must be addressable.
func fieldValue(sv reflect.Value, fd FieldDescriptor) reflect.Value {
	fv := sv.Field(fd.Index)
	if !fv.CanInterface() {
		fv = reflect.NewAt(fd.Type, unsafe.Pointer(fv.UnsafeAddr())).Elem()
	}
	return fv
}

// addressableCopy makes rv addressable so unexported fields stay
// reachable through fieldValue.
func addressableCopy(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}
	tmp := reflect.New(rv.Type()).Elem()
	tmp.Set(rv)
	return tmp
}

// formatValue renders a scalar field the way the value itself asks to be
// rendered: Stringer first, then kind-based.
func formatValue(fv reflect.Value, fd FieldDescriptor) string {
	if fd.cstr {
		if s, ok := cstring(fv); ok {
			return s
		}
	}

	if s, ok := tryStringer(fv); ok {
		return s
	}

	switch fv.Kind() {
	case reflect.Bool:
		return fmt.Sprintf("%v", fv.Bool())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fmt.Sprintf("%d (0x%X)", fv.Uint(), fv.Uint())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", fv.Int())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", fv.Float())
	case reflect.Array:
		return formatArray(fv)
	default:
		return fmt.Sprintf("%v", fv.Interface())
	}
}

func tryStringer(fv reflect.Value) (string, bool) {
	if !fv.IsValid() || !fv.CanInterface() {
		return "", false
	}
	if s, ok := fv.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}

// cstring renders a [N]byte field as a NUL-terminated string.
func cstring(fv reflect.Value) (string, bool) {
	if fv.Kind() != reflect.Array || fv.Type().Elem().Kind() != reflect.Uint8 {
		return "", false
	}
	b := make([]byte, fv.Len())
	for i := 0; i < fv.Len(); i++ {
		b[i] = byte(fv.Index(i).Uint())
	}
	n := len(b)
	for i, x := range b {
		if x == 0 {
			n = i
			break
		}
	}
	return fmt.Sprintf("%q", string(b[:n])), true
}

// formatArray shows a brief preview of the first elements.
func formatArray(fv reflect.Value) string {
	elemT := fv.Type().Elem()

	allZero := true
	for i := 0; i < fv.Len(); i++ {
		if !fv.Index(i).IsZero() {
			allZero = false
			break
		}
	}
	if allZero {
		return fmt.Sprintf("[%d]%s{0...}", fv.Len(), elemT)
	}

	maxShow := min(fv.Len(), 3)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "[%d]%s{", fv.Len(), elemT)
	for i := 0; i < maxShow; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		ev := fv.Index(i)
		switch ev.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fmt.Fprintf(sb, "0x%X", ev.Uint())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fmt.Fprintf(sb, "%d", ev.Int())
		default:
			fmt.Fprintf(sb, "%v", ev.Interface())
		}
	}
	if fv.Len() > maxShow {
		sb.WriteString("...")
	}
	sb.WriteString("}")
	return sb.String()
}
