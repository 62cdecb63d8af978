// Package registry implements the Type Definition Registry: the whitelist of
// host types, methods, fields, constructors and the lattice of legal
// casts/transforms between them (spec.md §4.1).
//
// The registry is built in two stages. During the open phase, callers call
// DefineStruct/DefineMethod/DefineField/DefineCtor/DefineCast to populate
// mutable maps. Freeze then closes every Define* call and derives the runtime
// dispatch table; it does not copy the maps, and no call writes to them
// after Freeze, so a frozen *Registry is shared across concurrent compiles
// without locking.
package registry

import "fmt"

// Sort is the primitive type-tag every Type carries.
type Sort int

const (
	Void Sort = iota
	Bool
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
	Object
	Def
	Array
)

var sortNames = [...]string{
	"void", "boolean", "byte", "short", "char", "int", "long", "float", "double",
	"Object", "def", "array",
}

func (s Sort) String() string {
	if int(s) < len(sortNames) {
		return sortNames[s]
	}
	return "unknown"
}

// primitiveWidth ranks the numeric primitives from narrowest to widest; it is
// the table the promotion algorithm (spec.md §4.1) widens along.
var primitiveWidth = map[Sort]int{
	Byte: 1, Short: 2, Char: 2, Int: 3, Long: 4, Float: 5, Double: 6,
}

func (s Sort) isIntegral() bool {
	switch s {
	case Byte, Short, Char, Int, Long:
		return true
	}
	return false
}

func (s Sort) isNumeric() bool {
	_, ok := primitiveWidth[s]
	return ok
}

// Type is a canonical type: a primitive sort, plus element/dimension info
// when it is an array, plus a reference to the underlying host Struct.
//
// Equality is structural on (Struct, array descriptor) as spec.md §3
// requires, which is why Type is compared with Equals rather than ==: two
// *Type values describing the same array-of-struct must compare equal even
// if they are different allocations.
type Type struct {
	Name   string
	Sort   Sort
	Elem   *Type   // non-nil iff Sort == Array
	Dims   int     // array nesting depth
	Struct *Struct // non-nil for Object/Def-backed types
}

// Equals implements the structural equality spec.md §3 mandates.
func (t *Type) Equals(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Sort != o.Sort || t.Dims != o.Dims {
		return false
	}
	if t.Sort == Array {
		return t.Elem.Equals(o.Elem)
	}
	if t.Struct != nil || o.Struct != nil {
		if t.Struct == nil || o.Struct == nil {
			return false
		}
		return t.Struct.Name == o.Struct.Name
	}
	return t.Name == o.Name
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Sort == Array {
		return t.Elem.String() + "[]"
	}
	return t.Name
}

// IsPrimitive reports whether t is one of the non-object numeric/bool/void sorts.
func (t *Type) IsPrimitive() bool {
	return t.Sort != Object && t.Sort != Def && t.Sort != Array
}

// MethodKey is the (name, arity) pair members of a Struct are keyed by.
// Painless overloads by arity only (spec.md §3): two same-name members of
// the same arity in one struct are a registry-build error.
type MethodKey struct {
	Name  string
	Arity int
}

func (k MethodKey) String() string { return fmt.Sprintf("%s/%d", k.Name, k.Arity) }

// Method describes a resolved host method, constructor or bridge handle.
type Method struct {
	Name       string
	Params     []*Type
	Return     *Type
	Static     bool
	HandleTag  string // e.g. "invokestatic", "invokevirtual", "newinvokespecial"
	Owner      *Struct
}

func (m *Method) Arity() int { return len(m.Params) }

// Field describes a resolved host field, or a synthesized getter/setter
// shortcut (spec.md §4.1 runtime dispatch table).
type Field struct {
	Name   string
	Type   *Type
	Static bool
}

// Struct is a named aggregate: constructors keyed by arity, instance and
// static methods keyed by (name, arity), instance and static fields keyed by
// name. Copying a struct from a supertype (see Registry.inheritMembers)
// replays inherited members onto the subtype, rebinding Owner to the
// subtype's concrete entry.
type Struct struct {
	Name          string
	Parent        *Struct
	Ctors         map[int]*Method
	Methods       map[MethodKey]*Method
	StaticMethods map[MethodKey]*Method
	Fields        map[string]*Field
	StaticFields  map[string]*Field
	frozen        bool
}

func newStruct(name string) *Struct {
	return &Struct{
		Name:          name,
		Ctors:         make(map[int]*Method),
		Methods:       make(map[MethodKey]*Method),
		StaticMethods: make(map[MethodKey]*Method),
		Fields:        make(map[string]*Field),
		StaticFields:  make(map[string]*Field),
	}
}

// LookupMethod resolves an instance method by (name, arity), walking up the
// inheritance chain. Arity-only overloading means this is a total lookup for
// any legally-registered struct.
func (s *Struct) LookupMethod(key MethodKey) *Method {
	for cur := s; cur != nil; cur = cur.Parent {
		if m, ok := cur.Methods[key]; ok {
			return m
		}
	}
	return nil
}

// LookupStaticMethod resolves a static method by (name, arity).
func (s *Struct) LookupStaticMethod(key MethodKey) *Method {
	for cur := s; cur != nil; cur = cur.Parent {
		if m, ok := cur.StaticMethods[key]; ok {
			return m
		}
	}
	return nil
}

// LookupField resolves an instance field by name.
func (s *Struct) LookupField(name string) *Field {
	for cur := s; cur != nil; cur = cur.Parent {
		if f, ok := cur.Fields[name]; ok {
			return f
		}
	}
	return nil
}

// LookupCtor resolves a constructor by arity.
func (s *Struct) LookupCtor(arity int) *Method {
	return s.Ctors[arity]
}

// IsSubtypeOf reports whether s is o or a descendant of o.
func (s *Struct) IsSubtypeOf(o *Struct) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur == o || cur.Name == o.Name {
			return true
		}
	}
	return false
}
