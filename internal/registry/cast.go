package registry

// CastKey identifies a registered conversion by its endpoints and whether the
// source program used an explicit cast expression to request it.
type CastKey struct {
	From     string
	To       string
	Explicit bool
}

// Transform is a Cast extended with an optional bridge method and optional
// up/down casts that bracket it (spec.md §3). A Cast between two primitives
// is a direct VM coercion and has no bridge; any other conversion must be a
// registered Transform with one.
type Transform struct {
	From, To *Type
	Explicit bool
	Bridge   *Method // nil for a direct primitive coercion
	Upcast   *Type   // applied to the operand before Bridge, if set
	Downcast *Type   // applied to Bridge's result, if set
}

// IsDirectCoercion reports whether this transform is a plain two-primitive
// coercion with no bridge method.
func (t *Transform) IsDirectCoercion() bool {
	return t.Bridge == nil && t.From.IsPrimitive() && t.To.IsPrimitive()
}

// numericSorts lists the numeric sorts; the registry auto-registers a direct
// coercion for every pair of them at build time (spec.md §4.1: "that is
// created at registry-build time for every legal numeric pair").
var numericSorts = []Sort{Byte, Short, Char, Int, Long, Float, Double}

// LookupCast resolves (from, to, explicit) to a Transform, or nil if no such
// conversion is registered. Exact match in the map wins; there is no partial
// credit for "close enough" endpoints (spec.md §4.1).
func (r *Registry) LookupCast(from, to *Type, explicit bool) *Transform {
	if from.Equals(to) {
		return &Transform{From: from, To: to, Explicit: explicit}
	}
	key := CastKey{From: from.Name, To: to.Name, Explicit: explicit}
	if t, ok := r.casts[key]; ok {
		return t
	}
	if !explicit {
		return nil
	}
	// An explicit cast expression may also consume an implicit (explicit=false)
	// transform: widening is always legal to spell out explicitly.
	key.Explicit = false
	if t, ok := r.casts[key]; ok {
		return t
	}
	return nil
}

// Unbox returns the primitive sort underlying a boxed wrapper type, or t
// itself if t is not a registered box. Painless boxes have the same name as
// their primitive counterpart by convention in this registry (Integer,
// Long, ...); promotion treats anything else object-shaped as non-numeric.
func (r *Registry) Unbox(t *Type) *Type {
	if t == nil {
		return nil
	}
	if t.IsPrimitive() {
		return t
	}
	if boxed, ok := r.boxes[t.Name]; ok {
		return boxed
	}
	return t
}

// Promote implements the unary arithmetic promotion rule: anything narrower
// than int widens to int; def and object operands promote to Object.
func (r *Registry) Promote(t *Type) *Type {
	u := r.Unbox(t)
	if u == nil || !u.IsPrimitive() || !u.isNumericType() {
		return r.objectType
	}
	if primitiveWidth[u.Sort] < primitiveWidth[Int] {
		return r.intType
	}
	return u
}

func (t *Type) isNumericType() bool { return t.Sort.isNumeric() }

// PromoteBinary implements the binary arithmetic promotion algorithm
// (spec.md §4.1): unbox both operands; if either unboxed is non-primitive,
// the result is Object; if both are bool, the result is bool; else the
// result is the wider of {double, float, long, int}, with anything
// narrower than int first widened to int.
func (r *Registry) PromoteBinary(a, b *Type) *Type {
	ua, ub := r.Unbox(a), r.Unbox(b)
	if ua == nil || ub == nil || !ua.IsPrimitive() || !ub.IsPrimitive() {
		return r.objectType
	}
	if ua.Sort == Bool && ub.Sort == Bool {
		return r.boolType
	}
	if !ua.isNumericType() || !ub.isNumericType() {
		return r.objectType
	}
	wa, wb := primitiveWidth[ua.Sort], primitiveWidth[ub.Sort]
	if wa < primitiveWidth[Int] {
		wa = primitiveWidth[Int]
		ua = r.intType
	}
	if wb < primitiveWidth[Int] {
		wb = primitiveWidth[Int]
		ub = r.intType
	}
	if wa >= wb {
		return ua
	}
	return ub
}
