package registry

import "fmt"

// BuildError reports a failure detected while opening or freezing a
// Registry. All such failures are surfaced at registry-build time, never at
// script compile time (spec.md §4.1 "Failure modes").
type BuildError struct {
	Message string
}

func (e *BuildError) Error() string { return e.Message }

// Registry is the frozen, deep-immutable catalog of types, members and
// casts a compile is grounded in. Construct one with New, populate it with
// the Define* methods during the open phase, then call Freeze; after Freeze
// returns without error the Registry is safe for concurrent read-only use
// by any number of compilers (spec.md §5).
type Registry struct {
	frozen bool

	structs map[string]*Struct
	types   map[string]*Type
	casts   map[CastKey]*Transform
	boxes   map[string]*Type // boxed-wrapper name -> underlying primitive Type
	runtime map[string]*RuntimeClass

	voidType, boolType, intType, objectType, defType *Type
}

// New opens a Registry and registers the primitive sorts, their boxed
// wrapper types, and the numeric coercion lattice between them.
func New() *Registry {
	r := &Registry{
		structs: make(map[string]*Struct),
		types:   make(map[string]*Type),
		casts:   make(map[CastKey]*Transform),
		boxes:   make(map[string]*Type),
	}
	r.registerPrimitives()
	return r
}

func (r *Registry) registerPrimitives() {
	prims := []struct {
		sort Sort
		name string
	}{
		{Void, "void"}, {Bool, "boolean"}, {Byte, "byte"}, {Short, "short"},
		{Char, "char"}, {Int, "int"}, {Long, "long"}, {Float, "float"},
		{Double, "double"}, {Object, "Object"}, {Def, "def"},
	}
	for _, p := range prims {
		t := &Type{Name: p.name, Sort: p.sort}
		r.types[p.name] = t
	}
	r.voidType = r.types["void"]
	r.boolType = r.types["boolean"]
	r.intType = r.types["int"]
	r.objectType = r.types["Object"]
	r.defType = r.types["def"]

	boxNames := map[Sort]string{
		Bool: "Boolean", Byte: "Byte", Short: "Short", Char: "Character",
		Int: "Integer", Long: "Long", Float: "Float", Double: "Double",
	}
	for sort, name := range boxNames {
		prim := r.typeForSort(sort)
		boxed := &Type{Name: name, Sort: Object, Struct: newStruct(name)}
		r.types[name] = boxed
		r.boxes[name] = prim
	}

	// Every legal numeric pair gets a direct coercion, per spec.md §4.1.
	for _, from := range numericSorts {
		for _, to := range numericSorts {
			if from == to {
				continue
			}
			ft, tt := r.typeForSort(from), r.typeForSort(to)
			explicit := primitiveWidth[from] > primitiveWidth[to] // narrowing requires an explicit cast
			r.casts[CastKey{From: ft.Name, To: tt.Name, Explicit: explicit}] = &Transform{From: ft, To: tt, Explicit: explicit}
		}
	}
}

func (r *Registry) typeForSort(s Sort) *Type { return r.types[sortNames[s]] }

func (r *Registry) mustNotBeFrozen(action string) error {
	if r.frozen {
		return &BuildError{Message: fmt.Sprintf("cannot %s: registry is frozen", action)}
	}
	return nil
}

// DefineStruct registers a new struct. name must be unique; dup registration
// is a build error. parent, if non-empty, must already be registered — its
// members are replayed onto the new struct (spec.md §3 "Copying a struct
// from a supertype").
func (r *Registry) DefineStruct(name, parent string) error {
	if err := r.mustNotBeFrozen("define struct"); err != nil {
		return err
	}
	if _, exists := r.structs[name]; exists {
		return &BuildError{Message: fmt.Sprintf("duplicate struct %q", name)}
	}
	s := newStruct(name)
	if parent != "" {
		p, ok := r.structs[parent]
		if !ok {
			return &BuildError{Message: fmt.Sprintf("struct %q: unknown parent struct %q", name, parent)}
		}
		s.Parent = p
	}
	r.structs[name] = s
	r.types[name] = &Type{Name: name, Sort: Object, Struct: s}
	return nil
}

// DefineArrayType returns the array type of elem with the given dimension
// count. Before Freeze a new array type is registered; after Freeze it is
// built fresh on each call and the registry is left unchanged.
func (r *Registry) DefineArrayType(elem *Type, dims int) *Type {
	name := elem.Name
	for i := 0; i < dims; i++ {
		name += "[]"
	}
	if t, ok := r.types[name]; ok {
		return t
	}
	t := &Type{Name: name, Sort: Array, Elem: elem, Dims: dims}
	if !r.frozen {
		r.types[name] = t
	}
	return t
}

// LookupType resolves a type by its canonical name, including array
// descriptors written as "elem[]"/"elem[][]".
func (r *Registry) LookupType(name string) *Type {
	if t, ok := r.types[name]; ok {
		return t
	}
	// array syntax: strip trailing "[]" pairs and recurse
	dims := 0
	base := name
	for len(base) >= 2 && base[len(base)-2:] == "[]" {
		dims++
		base = base[:len(base)-2]
	}
	if dims == 0 {
		return nil
	}
	elem := r.LookupType(base)
	if elem == nil {
		return nil
	}
	return r.DefineArrayType(elem, dims)
}

// DefineMethod registers an instance or static method on struct named
// structName. Two same-name members of the same arity in one struct are
// forbidden (spec.md §3 "Overloading is arity-only").
func (r *Registry) DefineMethod(structName string, m *Method) error {
	if err := r.mustNotBeFrozen("define method"); err != nil {
		return err
	}
	s, ok := r.structs[structName]
	if !ok {
		return &BuildError{Message: fmt.Sprintf("unknown struct %q", structName)}
	}
	key := MethodKey{Name: m.Name, Arity: m.Arity()}
	target := s.Methods
	if m.Static {
		target = s.StaticMethods
	}
	if _, exists := target[key]; exists {
		return &BuildError{Message: fmt.Sprintf("%s: duplicate member %s", structName, key)}
	}
	m.Owner = s
	target[key] = m
	return nil
}

// DefineField registers an instance or static field.
func (r *Registry) DefineField(structName string, f *Field) error {
	if err := r.mustNotBeFrozen("define field"); err != nil {
		return err
	}
	s, ok := r.structs[structName]
	if !ok {
		return &BuildError{Message: fmt.Sprintf("unknown struct %q", structName)}
	}
	target := s.Fields
	if f.Static {
		target = s.StaticFields
	}
	if _, exists := target[f.Name]; exists {
		return &BuildError{Message: fmt.Sprintf("%s: duplicate field %q", structName, f.Name)}
	}
	target[f.Name] = f
	return nil
}

// DefineCtor registers a constructor keyed by arity.
func (r *Registry) DefineCtor(structName string, m *Method) error {
	if err := r.mustNotBeFrozen("define ctor"); err != nil {
		return err
	}
	s, ok := r.structs[structName]
	if !ok {
		return &BuildError{Message: fmt.Sprintf("unknown struct %q", structName)}
	}
	if _, exists := s.Ctors[m.Arity()]; exists {
		return &BuildError{Message: fmt.Sprintf("%s: duplicate constructor of arity %d", structName, m.Arity())}
	}
	m.Owner = s
	m.Name = "<init>"
	s.Ctors[m.Arity()] = m
	return nil
}

// DefineCast registers a Transform between two non-primitive (or mixed)
// types. Two primitives without an explicit entry fall back to the direct
// numeric coercion table built in New; attempting to register a plain Cast
// (no bridge) between two non-primitives is a build error.
func (r *Registry) DefineCast(t *Transform) error {
	if err := r.mustNotBeFrozen("define cast"); err != nil {
		return err
	}
	if t.Bridge == nil && !(t.From.IsPrimitive() && t.To.IsPrimitive()) {
		return &BuildError{Message: fmt.Sprintf("cast %s->%s: non-primitive endpoints require a bridge method", t.From, t.To)}
	}
	key := CastKey{From: t.From.Name, To: t.To.Name, Explicit: t.Explicit}
	if _, exists := r.casts[key]; exists {
		return &BuildError{Message: fmt.Sprintf("duplicate cast %s->%s (explicit=%v)", t.From, t.To, t.Explicit)}
	}
	r.casts[key] = t
	return nil
}

// Freeze closes the open phase: it replays inherited members onto every
// subtype, validates every registered cast's endpoints, derives the runtime
// dispatch table, and marks the Registry immutable. Freeze fails (returning
// the first inconsistency found) on a cyclic parent chain or on a plain cast
// (no bridge) whose endpoints are not both primitive. An unknown parent
// struct is already rejected by DefineStruct; this registry has no generics.
func (r *Registry) Freeze() error {
	if r.frozen {
		return nil
	}
	for _, s := range r.structs {
		if err := inheritMembers(s); err != nil {
			return err
		}
	}
	for key, t := range r.casts {
		if t.Bridge == nil && !(t.From.IsPrimitive() && t.To.IsPrimitive()) {
			return &BuildError{Message: fmt.Sprintf("freeze: cast %v invalid: non-primitive endpoints need a bridge", key)}
		}
	}
	r.runtime = deriveRuntimeTable(r.structs)
	r.frozen = true
	return nil
}

// Frozen reports whether Freeze has completed successfully.
func (r *Registry) Frozen() bool { return r.frozen }

// VoidType, BoolType, IntType, ObjectType and DefType return the Registry's
// well-known primitive Types, needed throughout the analyzer and emitter
// (e.g. a statement's expression type defaults to void, a condition must
// resolve to boolean, an unannotated local is def).
func (r *Registry) VoidType() *Type   { return r.voidType }
func (r *Registry) BoolType() *Type   { return r.boolType }
func (r *Registry) IntType() *Type    { return r.intType }
func (r *Registry) ObjectType() *Type { return r.objectType }
func (r *Registry) DefType() *Type    { return r.defType }

// inheritMembers replays every member of s.Parent's chain onto s that s does
// not already define directly, rebinding Owner to s (spec.md §3).
func inheritMembers(s *Struct) error {
	if s.Parent == nil {
		return nil
	}
	seen := map[*Struct]bool{s: true}
	for p := s.Parent; p != nil; p = p.Parent {
		if seen[p] {
			return &BuildError{Message: fmt.Sprintf("struct %q: cyclic parent chain", s.Name)}
		}
		seen[p] = true
		for k, m := range p.Methods {
			if _, exists := s.Methods[k]; !exists {
				copied := *m
				copied.Owner = s
				s.Methods[k] = &copied
			}
		}
		for k, m := range p.StaticMethods {
			if _, exists := s.StaticMethods[k]; !exists {
				copied := *m
				copied.Owner = s
				s.StaticMethods[k] = &copied
			}
		}
		for k, f := range p.Fields {
			if _, exists := s.Fields[k]; !exists {
				s.Fields[k] = f
			}
		}
	}
	return nil
}
