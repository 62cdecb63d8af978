package vm

import (
	"fmt"

	"github.com/painless-lang/painless/internal/registry"
)

// staticArith performs a statically-typed binary operator the analyzer has
// already settled on a concrete numeric width for (spec.md §4.3 "arithmetic
// emission" — the emitter never emits Add/Sub/... for a `def` operand; those
// go through InvokeDynamic's TagAdd/TagSub/... instead). The result keeps
// whichever operand's Go type is widest, mirroring registry.PromoteBinary
// having already picked that width at analysis time.
func staticArith(op OpCode, l, r any) (any, error) {
	if ls, ok := l.(string); ok && op == Add {
		return ls + toDisplayString(r), nil
	}
	switch op {
	case BitAnd, BitOr, BitXor, Shl, Shr, Ushr:
		li, _ := toInt64(l)
		ri, _ := toInt64(r)
		return intBitOp(op, l, li, ri), nil
	}
	lf, lok := toFloat64(l)
	rf, rok := toFloat64(r)
	if !lok || !rok {
		return nil, newRuntimeError("bad-operand", "arithmetic on non-numeric operand")
	}
	switch op {
	case Add:
		return numericResult(l, r, lf+rf), nil
	case Sub:
		return numericResult(l, r, lf-rf), nil
	case Mul:
		return numericResult(l, r, lf*rf), nil
	case Div:
		if rf == 0 {
			return nil, newRuntimeError("div-by-zero", "division by zero")
		}
		return numericResult(l, r, lf/rf), nil
	case Rem:
		li, _ := toInt64(l)
		ri, _ := toInt64(r)
		if ri == 0 {
			return nil, newRuntimeError("div-by-zero", "modulo by zero")
		}
		return numericResult(l, r, float64(li%ri)), nil
	}
	return nil, newRuntimeError("bad-bootstrap", "unhandled arithmetic opcode %s", op)
}

func intBitOp(op OpCode, typeHint any, l, r int64) any {
	var v int64
	switch op {
	case BitAnd:
		v = l & r
	case BitOr:
		v = l | r
	case BitXor:
		v = l ^ r
	case Shl:
		v = l << uint(r)
	case Shr:
		v = l >> uint(r)
	case Ushr:
		v = int64(uint64(l) >> uint(r))
	}
	if _, ok := typeHint.(int64); ok {
		return v
	}
	return int32(v)
}

func staticCompare(op OpCode, l, r any) bool {
	lf, lok := toFloat64(l)
	rf, rok := toFloat64(r)
	if !lok || !rok {
		switch op {
		case CmpEq:
			return l == r
		case CmpNe:
			return l != r
		}
		return false
	}
	switch op {
	case CmpEq:
		return lf == rf
	case CmpNe:
		return lf != rf
	case CmpLt:
		return lf < rf
	case CmpLe:
		return lf <= rf
	case CmpGt:
		return lf > rf
	case CmpGe:
		return lf >= rf
	}
	return false
}

func bitNot(v any) any {
	i, _ := toInt64(v)
	if _, ok := v.(int64); ok {
		return ^i
	}
	return int32(^i)
}

func negate(v any) any {
	switch x := v.(type) {
	case int32:
		return -x
	case int64:
		return -x
	case float32:
		return -x
	case float64:
		return -x
	}
	return v
}

func toDisplayString(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// coerce applies a direct VM-level numeric/widening coercion to a value
// known to already satisfy the target Type (the analyzer has verified the
// cast is legal; the emitter only emits Coerce for registry.Transform.
// IsDirectCoercion()-true conversions, spec.md §4.3).
func coerce(v any, t *registry.Type) any {
	if v == nil {
		return nil
	}
	switch t.Sort {
	case registry.Byte, registry.Short, registry.Char, registry.Int:
		i, _ := toInt64(v)
		return int32(i)
	case registry.Long:
		i, _ := toInt64(v)
		return i
	case registry.Float:
		f, _ := toFloat64(v)
		return float32(f)
	case registry.Double:
		f, _ := toFloat64(v)
		return f
	case registry.Bool:
		return truthy(v)
	}
	return v
}

// isInstanceOf reports whether v's runtime type satisfies t, walking the
// registry's struct inheritance chain for object-shaped targets.
func isInstanceOf(reg *registry.Registry, v any, t *registry.Type) bool {
	if v == nil {
		return false
	}
	if t.Sort != registry.Object && t.Sort != registry.Def {
		switch t.Sort {
		case registry.Int, registry.Byte, registry.Short, registry.Char, registry.Long:
			_, ok := toInt64(v)
			return ok
		case registry.Float, registry.Double:
			_, ok := toFloat64(v)
			return ok
		case registry.Bool:
			_, ok := v.(bool)
			return ok
		}
		return false
	}
	if t.Struct == nil || t.Struct.Name == "Object" {
		return true
	}
	name := structNameOf(v)
	rc := reg.RuntimeClassFor(name)
	if rc == nil {
		return name == t.Struct.Name
	}
	return rc.Struct.IsSubtypeOf(t.Struct)
}
