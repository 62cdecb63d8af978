package vm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/painless-lang/painless/internal/registry"
)

// Tag selects the operation an invokedynamic call site performs, the small
// integer spec.md §4.3 describes riding alongside the call site's static
// descriptor so the bootstrap can pick a specialized handle.
type Tag int

const (
	TagMethodCall Tag = iota
	TagLoadField
	TagStoreField
	TagArrayLoad
	TagArrayStore
	TagAdd
	TagSub
	TagMul
	TagDiv
	TagRem
	TagCmpEq
	TagCmpNe
	TagCmpLt
	TagCmpLe
	TagCmpGt
	TagCmpGe
	TagBitAnd
	TagBitOr
	TagBitXor
	TagShl
	TagShr
	TagUshr
	TagMatches
	TagFinds
)

// CallSiteDescriptor is the constant-pool payload an InvokeDynamic
// instruction references: the operation Tag, the member name for
// TagMethodCall/TagLoadField/TagStoreField, and the argument count.
type CallSiteDescriptor struct {
	Tag   Tag
	Name  string
	Arity int
}

func (d *CallSiteDescriptor) String() string {
	if d.Name != "" {
		return fmt.Sprintf("dynamic:%d %s/%d", d.Tag, d.Name, d.Arity)
	}
	return fmt.Sprintf("dynamic:%d", d.Tag)
}

// invokeDynamic resolves one dynamic-dispatch call against the registry's
// runtime dispatch table (registry.RuntimeClassFor), the fixed
// "(tag, static-descriptor) -> specialized handle" contract spec.md §6
// describes. It consults the runtime type of the receiver rather than a
// static descriptor, since `def` by definition carries no static type —
// the same outcome a real invokedynamic bootstrap reaches once its
// CallSite is linked against the concrete receiver on first call.
func (m *Machine) invokeDynamic(d *CallSiteDescriptor, args []any) (any, error) {
	switch d.Tag {
	case TagMethodCall:
		return dynamicCall(m, args[0], d.Name, args[1:])
	case TagLoadField:
		return dynamicGet(m.registry(), args[0], d.Name)
	case TagStoreField:
		return nil, dynamicSet(m.registry(), args[0], d.Name, args[1])
	case TagArrayLoad:
		return dynamicIndexGet(args[0], args[1])
	case TagArrayStore:
		return nil, dynamicIndexSet(args[0], args[1], args[2])
	case TagAdd, TagSub, TagMul, TagDiv, TagRem, TagBitAnd, TagBitOr, TagBitXor, TagShl, TagShr, TagUshr:
		return dynamicArith(d.Tag, args[0], args[1])
	case TagCmpEq, TagCmpNe, TagCmpLt, TagCmpLe, TagCmpGt, TagCmpGe:
		return dynamicCompare(d.Tag, args[0], args[1])
	case TagMatches, TagFinds:
		return dynamicRegex(d.Tag, args[0], args[1])
	default:
		return nil, newRuntimeError("bad-bootstrap", "unknown dynamic-dispatch tag %d", d.Tag)
	}
}

func structNameOf(v any) string {
	switch o := v.(type) {
	case *Instance:
		return o.StructName
	case *PList:
		return "List"
	case *PMap:
		return "HashMap"
	}
	if v == nil {
		return ""
	}
	return reflect.TypeOf(v).String()
}

func dynamicCall(m *Machine, recv any, name string, args []any) (any, error) {
	if value, err, ok := builtinCall(m, recv, name, args); ok {
		return value, err
	}
	obj, ok := recv.(*Instance)
	if !ok {
		// toString() on a bare primitive (the int->String cast bridge, or a
		// script calling it directly) has no host class to dispatch
		// through; fall back to the same formatting staticArith's string
		// concatenation already relies on.
		if name == "toString" {
			return toDisplayString(recv), nil
		}
		return nil, newRuntimeError("no-such-method", "%v has no method %q", structNameOf(recv), name)
	}
	rc := m.registry().RuntimeClassFor(obj.StructName)
	if rc == nil {
		return nil, newRuntimeError("no-such-method", "%s has no method %q", obj.StructName, name)
	}
	method := rc.Methods[registry.MethodKey{Name: name, Arity: len(args)}]
	if method == nil {
		return nil, newRuntimeError("no-such-method", "%s has no method %s/%d", obj.StructName, name, len(args))
	}
	return invokeHostMethod(obj, method, args)
}

func dynamicGet(reg *registry.Registry, recv any, name string) (any, error) {
	obj, ok := recv.(*Instance)
	if !ok {
		return nil, newRuntimeError("no-such-field", "%v has no field %q", structNameOf(recv), name)
	}
	if v, ok := obj.Fields[name]; ok {
		return v, nil
	}
	rc := reg.RuntimeClassFor(obj.StructName)
	if rc != nil {
		if getter := rc.Getters[name]; getter != nil {
			return invokeHostMethod(obj, getter, nil)
		}
	}
	return nil, newRuntimeError("no-such-field", "%s has no field %q", obj.StructName, name)
}

func dynamicSet(reg *registry.Registry, recv any, name string, value any) error {
	obj, ok := recv.(*Instance)
	if !ok {
		return newRuntimeError("no-such-field", "%v has no field %q", structNameOf(recv), name)
	}
	rc := reg.RuntimeClassFor(obj.StructName)
	if rc != nil {
		if setter := rc.Setters[name]; setter != nil {
			_, err := invokeHostMethod(obj, setter, []any{value})
			return err
		}
	}
	if obj.Fields == nil {
		obj.Fields = map[string]any{}
	}
	obj.Fields[name] = value
	return nil
}

func dynamicIndexGet(recv, index any) (any, error) {
	switch r := recv.(type) {
	case *PList:
		i, err := asInt(index)
		if err != nil {
			return nil, err
		}
		return r.Get(i)
	case *PMap:
		return r.Get(index), nil
	default:
		return nil, newRuntimeError("not-indexable", "%v cannot be indexed", structNameOf(recv))
	}
}

func dynamicIndexSet(recv, index, value any) error {
	switch r := recv.(type) {
	case *PList:
		i, err := asInt(index)
		if err != nil {
			return err
		}
		return r.Set(i, value)
	case *PMap:
		r.Put(index, value)
		return nil
	default:
		return newRuntimeError("not-indexable", "%v cannot be indexed", structNameOf(recv))
	}
}

// dynamicRegex backs the `=~`/`==~` operators (spec.md §3 MATCHES/FINDS):
// l is the subject string, r the pre-compiled *regexp.Regexp a RegexLit
// emits as a constant. MATCHES requires the whole string to match; FINDS
// (==~) accepts a match anywhere in the string, mirroring Java's
// Matcher.matches versus Matcher.find.
func dynamicRegex(tag Tag, l, r any) (any, error) {
	s, ok := l.(string)
	if !ok {
		return nil, newRuntimeError("bad-operand", "regex operator applied to non-string %v", structNameOf(l))
	}
	re, ok := r.(*regexp.Regexp)
	if !ok {
		return nil, newRuntimeError("bad-operand", "regex operator's right-hand side is not a compiled pattern")
	}
	if tag == TagMatches {
		whole, err := regexp.Compile(`^(?:` + re.String() + `)$`)
		if err != nil {
			return nil, newRuntimeError("bad-operand", "cannot anchor pattern %q: %v", re.String(), err)
		}
		return whole.MatchString(s), nil
	}
	return re.MatchString(s), nil
}

func dynamicArith(tag Tag, l, r any) (any, error) {
	if ls, ok := l.(string); ok && tag == TagAdd {
		return ls + fmt.Sprint(r), nil
	}
	switch tag {
	case TagBitAnd, TagBitOr, TagBitXor, TagShl, TagShr, TagUshr:
		li, lok := toInt64(l)
		ri, rok := toInt64(r)
		if !lok || !rok {
			return nil, newRuntimeError("bad-operand", "bitwise operation on non-integral def value")
		}
		return intBitOp(dynamicBitOpcode(tag), l, li, ri), nil
	}
	lf, lok := toFloat64(l)
	rf, rok := toFloat64(r)
	if !lok || !rok {
		return nil, newRuntimeError("bad-operand", "arithmetic on non-numeric def value")
	}
	switch tag {
	case TagAdd:
		return numericResult(l, r, lf+rf), nil
	case TagSub:
		return numericResult(l, r, lf-rf), nil
	case TagMul:
		return numericResult(l, r, lf*rf), nil
	case TagDiv:
		if rf == 0 {
			return nil, newRuntimeError("div-by-zero", "division by zero")
		}
		return numericResult(l, r, lf/rf), nil
	case TagRem:
		li, _ := toInt64(l)
		ri, _ := toInt64(r)
		if ri == 0 {
			return nil, newRuntimeError("div-by-zero", "modulo by zero")
		}
		return li % ri, nil
	}
	return nil, newRuntimeError("bad-bootstrap", "unhandled arithmetic tag")
}

// dynamicBitOpcode maps a bitwise Tag to the matching static OpCode so
// dynamicArith can reuse intBitOp rather than duplicating its switch.
func dynamicBitOpcode(tag Tag) OpCode {
	switch tag {
	case TagBitAnd:
		return BitAnd
	case TagBitOr:
		return BitOr
	case TagBitXor:
		return BitXor
	case TagShl:
		return Shl
	case TagShr:
		return Shr
	case TagUshr:
		return Ushr
	}
	return BitAnd
}

func dynamicCompare(tag Tag, l, r any) (any, error) {
	lf, lok := toFloat64(l)
	rf, rok := toFloat64(r)
	if !lok || !rok {
		switch tag {
		case TagCmpEq:
			return l == r, nil
		case TagCmpNe:
			return l != r, nil
		default:
			return nil, newRuntimeError("bad-operand", "ordering comparison on non-numeric def value")
		}
	}
	switch tag {
	case TagCmpEq:
		return lf == rf, nil
	case TagCmpNe:
		return lf != rf, nil
	case TagCmpLt:
		return lf < rf, nil
	case TagCmpLe:
		return lf <= rf, nil
	case TagCmpGt:
		return lf > rf, nil
	case TagCmpGe:
		return lf >= rf, nil
	}
	return nil, newRuntimeError("bad-bootstrap", "unhandled comparison tag")
}

// numericResult narrows a float64 arithmetic result back to the widest of
// its two Go operand types, so `int + int` still yields an int32 rather
// than silently widening every dynamic arithmetic result to float64.
func numericResult(l, r any, v float64) any {
	if _, ok := l.(float64); ok {
		return v
	}
	if _, ok := r.(float64); ok {
		return v
	}
	if _, ok := l.(float32); ok {
		return float32(v)
	}
	if _, ok := r.(float32); ok {
		return float32(v)
	}
	if _, ok := l.(int64); ok {
		return int64(v)
	}
	if _, ok := r.(int64); ok {
		return int64(v)
	}
	return int32(v)
}
