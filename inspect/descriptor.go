// Package inspect prints structs read out of a remote address space,
// transparently following remote pointer fields through a memory.Reader
// up to a configurable depth.
package inspect

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"memview/remote"
)

// FieldClass is the checked variant deciding how a field is printed.
// Pointer-ness comes from the field type implementing remote.Pointer,
// never from its type name.
type FieldClass int

const (
	// FieldScalar prints as "name: type = value".
	FieldScalar FieldClass = iota

	// FieldStruct expands structurally at the same depth.
	FieldStruct

	// FieldRemotePointer prints a "name-> Pointee @ addr" header and is
	// followed through the reader while depth remains.
	FieldRemotePointer
)

// FieldDescriptor is static metadata for one struct member.
type FieldDescriptor struct {
	Name   string
	Index  int
	Offset uintptr
	Type   reflect.Type
	Class  FieldClass
	Target reflect.Type // pointee type when Class == FieldRemotePointer
	Tag    string       // raw "mem" struct tag

	skip bool // mem:"skip"
	cstr bool // mem:"cstr"
}

// StructDescriptor is the ordered field list for one struct type,
// immutable once built.
type StructDescriptor struct {
	Type   reflect.Type
	Name   string
	Fields []FieldDescriptor
}

var (
	descriptors       sync.Map // reflect.Type -> *StructDescriptor
	descriptorsByName sync.Map // string -> *StructDescriptor
)

var pointerType = reflect.TypeOf((*remote.Pointer)(nil)).Elem()

// Describe returns the descriptor for t, building and caching it on first
// use. t must be a struct type.
func Describe(t reflect.Type) (*StructDescriptor, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("inspect: %v is not a struct type", t)
	}

	if cached, ok := descriptors.Load(t); ok {
		return cached.(*StructDescriptor), nil
	}

	sd := &StructDescriptor{
		Type: t,
		Name: typeName(t),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "_" {
			// Anonymous padding, never printable.
			continue
		}

		tag := f.Tag.Get("mem")
		fd := FieldDescriptor{
			Name:   f.Name,
			Index:  i,
			Offset: f.Offset,
			Type:   f.Type,
			Tag:    tag,
			skip:   tagHas(tag, "skip"),
			cstr:   tagHas(tag, "cstr"),
		}

		switch {
		case f.Type.Kind() == reflect.Interface:
			// The pointee type belongs to the concrete value, not the
			// interface, so interface fields stay scalar and render
			// through their Stringer.
			fd.Class = FieldScalar
		case f.Type.Implements(pointerType):
			fd.Class = FieldRemotePointer
			fd.Target = reflect.Zero(f.Type).Interface().(remote.Pointer).Pointee()
		case f.Type.Kind() == reflect.Struct:
			fd.Class = FieldStruct
		default:
			fd.Class = FieldScalar
		}

		sd.Fields = append(sd.Fields, fd)
	}

	actual, _ := descriptors.LoadOrStore(t, sd)
	sd = actual.(*StructDescriptor)
	if prev, loaded := descriptorsByName.LoadOrStore(sd.Name, sd); loaded && prev.(*StructDescriptor).Type != t {
		// Same bare name from another package. The first registration keeps
		// the bare name, later ones are reachable by their qualified name.
		descriptorsByName.Store(t.String(), sd)
	}

	return sd, nil
}

// Register builds and caches the descriptor for T, making the type
// reachable by name through Lookup. Intended for init-time registration.
func Register[T any]() (*StructDescriptor, error) {
	return Describe(reflect.TypeOf((*T)(nil)).Elem())
}

// MustRegister is Register that panics on non-struct types.
func MustRegister[T any]() *StructDescriptor {
	sd, err := Register[T]()
	if err != nil {
		panic(err)
	}
	return sd
}

// Lookup returns a previously registered descriptor by type name. When two
// registered types share a bare name, the later one is keyed by its
// package-qualified name ("pkg.Name") instead.
func Lookup(name string) (*StructDescriptor, bool) {
	sd, ok := descriptorsByName.Load(name)
	if !ok {
		return nil, false
	}
	return sd.(*StructDescriptor), true
}

// RegisteredNames returns the names of all registered struct types.
func RegisteredNames() []string {
	var names []string
	descriptorsByName.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	return names
}

func tagHas(tag, option string) bool {
	for _, part := range strings.Split(tag, ",") {
		if part == option {
			return true
		}
	}
	return false
}

func typeName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
