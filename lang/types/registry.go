// Package types implements the Type Registry and the runtime Value
// representation shared by the constant table and the virtual machine
// stack.
package types

import (
	"strconv"

	"golang.org/x/exp/slices"
)

// Tag discriminates the kind of a TypeInfo.
type Tag uint8

const (
	Invalid Tag = iota
	Void
	I32
	F32
	Bool
	TypeType // the type of type-valued expressions like `i32` itself
	Function
	Struct
	Pointer
	Array
)

func (t Tag) String() string {
	switch t {
	case Invalid:
		return "invalid"
	case Void:
		return "void"
	case I32:
		return "i32"
	case F32:
		return "f32"
	case Bool:
		return "bool"
	case TypeType:
		return "type"
	case Function:
		return "function"
	case Struct:
		return "struct"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	default:
		return "?"
	}
}

// Member is one ordered field of a struct type.
type Member struct {
	Name   string
	Type   int // id into the owning Registry
	Offset int // cumulative byte offset of prior members
}

// Info is a canonical, interned type descriptor. Identity is structural for
// base/function/pointer/array types, nominal (by Name) for structs.
type Info struct {
	Tag  Tag
	Name string // display name; for Struct, also the nominal identity
	Size int    // size in bytes

	// Function
	Params []int // param type ids, ordered
	Return int   // return type id (Void's id if none)

	// Struct
	Members []Member

	// Pointer
	Pointee int // type id

	// Array
	Elem int // type id
	Dim  int
}

// fixed indices for the base types, in registry insertion order.
const (
	InvalidID = iota
	VoidID
	I32ID
	F32ID
	BoolID
	TypeID
)

// Registry is the append-only, interned table of canonical TypeInfos. Type
// ids are indices into Types and never change once assigned.
type Registry struct {
	Types []Info

	// structsByName backs LookupStruct's nominal struct lookup by name.
	structsByName *structIndex
}

// NewRegistry creates a Registry pre-populated with the fixed base types:
// invalid, void, i32, f32, bool, type.
func NewRegistry() *Registry {
	r := &Registry{structsByName: newStructIndex()}
	r.Types = append(r.Types,
		Info{Tag: Invalid, Name: "invalid", Size: 0},
		Info{Tag: Void, Name: "void", Size: 0},
		Info{Tag: I32, Name: "i32", Size: 4},
		Info{Tag: F32, Name: "f32", Size: 4},
		Info{Tag: Bool, Name: "bool", Size: 1},
		Info{Tag: TypeType, Name: "type", Size: 4},
	)
	return r
}

// Get returns the Info for id. It panics if id is out of range, which would
// indicate a compiler bug (ids are only ever produced by this Registry).
func (r *Registry) Get(id int) *Info {
	return &r.Types[id]
}

// Equal reports whether the two type ids denote identical types per the
// identity rules in the Data Model: structural for base/function/pointer/
// array, nominal for struct.
func (r *Registry) Equal(a, b int) bool {
	if a == b {
		return true
	}
	ta, tb := &r.Types[a], &r.Types[b]
	if ta.Tag != tb.Tag {
		return false
	}
	switch ta.Tag {
	case Invalid, Void, I32, F32, Bool, TypeType:
		return true
	case Struct:
		return ta.Name == tb.Name
	case Function:
		if len(ta.Params) != len(tb.Params) || !r.Equal(ta.Return, tb.Return) {
			return false
		}
		for i := range ta.Params {
			if !r.Equal(ta.Params[i], tb.Params[i]) {
				return false
			}
		}
		return true
	case Pointer:
		return r.Equal(ta.Pointee, tb.Pointee)
	case Array:
		return ta.Dim == tb.Dim && r.Equal(ta.Elem, tb.Elem)
	default:
		return false
	}
}

func (r *Registry) findEqual(candidate Info) (int, bool) {
	idx := slices.IndexFunc(r.Types, func(existing Info) bool {
		if existing.Tag != candidate.Tag {
			return false
		}
		switch existing.Tag {
		case Function:
			if len(existing.Params) != len(candidate.Params) || existing.Return != candidate.Return {
				return false
			}
			for i := range existing.Params {
				if existing.Params[i] != candidate.Params[i] {
					return false
				}
			}
			return true
		case Pointer:
			return existing.Pointee == candidate.Pointee
		case Array:
			return existing.Dim == candidate.Dim && existing.Elem == candidate.Elem
		case Struct:
			return existing.Name == candidate.Name
		default:
			return true
		}
	})
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// intern appends candidate if no structurally/nominally equal entry exists,
// returning the existing or newly-assigned id.
func (r *Registry) intern(candidate Info) int {
	if id, ok := r.findEqual(candidate); ok {
		return id
	}
	r.Types = append(r.Types, candidate)
	id := len(r.Types) - 1
	if candidate.Tag == Struct {
		r.structsByName.set(candidate.Name, id)
	}
	return id
}

// FunctionType interns a function type with the given ordered parameter
// type ids and return type id.
func (r *Registry) FunctionType(params []int, ret int) int {
	name := "func("
	for i, p := range params {
		if i > 0 {
			name += ", "
		}
		name += r.Types[p].Name
	}
	name += ")"
	if ret != VoidID {
		name += " -> " + r.Types[ret].Name
	}
	return r.intern(Info{Tag: Function, Name: name, Size: 8, Params: append([]int(nil), params...), Return: ret})
}

// PointerType interns a pointer-to-pointee type.
func (r *Registry) PointerType(pointee int) int {
	return r.intern(Info{Tag: Pointer, Name: "^" + r.Types[pointee].Name, Size: 8, Pointee: pointee})
}

// ArrayType interns a dim-element array of elem.
func (r *Registry) ArrayType(elem int, dim int) int {
	return r.intern(Info{
		Tag:  Array,
		Name: arrayName(r.Types[elem].Name, dim),
		Size: r.Types[elem].Size * dim,
		Elem: elem,
		Dim:  dim,
	})
}

func arrayName(elem string, dim int) string {
	return "[" + strconv.Itoa(dim) + "]" + elem
}

// DeclareStruct interns a new nominal struct type. Members must already
// have their Offset computed (cumulative size of prior members).
func (r *Registry) DeclareStruct(name string, members []Member) int {
	size := 0
	for _, m := range members {
		size += r.Types[m.Type].Size
	}
	return r.intern(Info{Tag: Struct, Name: name, Size: size, Members: append([]Member(nil), members...)})
}

// LookupStruct returns the type id of a previously declared struct named
// name, or (0, false).
func (r *Registry) LookupStruct(name string) (int, bool) {
	return r.structsByName.get(name)
}
