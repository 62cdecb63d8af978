package vm

import "fmt"

// Instance is the runtime representation of a user `new Type(args)` value
// and of the small set of host exception/record classes the end-to-end
// scenarios exercise (spec.md §8). It plays the role the teacher's
// ObjectInstance does in internal/bytecode/bytecode.go, minus the
// case-folded property table — Painless field/method names are
// case-sensitive.
type Instance struct {
	StructName string
	Fields     map[string]any
}

func newInstance(structName string) *Instance {
	return &Instance{StructName: structName, Fields: map[string]any{}}
}

func (o *Instance) String() string {
	return fmt.Sprintf("<%s>", o.StructName)
}

// PList backs the `List` whitelist entry with a native Go
// slice, the way the teacher's ArrayInstance (internal/bytecode/bytecode.go)
// backs DWScript arrays.
type PList struct {
	elems []any
}

func NewPList(elems []any) *PList {
	cp := make([]any, len(elems))
	copy(cp, elems)
	return &PList{elems: cp}
}

func (l *PList) Len() int { return len(l.elems) }

func (l *PList) Get(i int) (any, error) {
	if i < 0 || i >= len(l.elems) {
		return nil, newRuntimeError("index-out-of-bounds", "list index %d out of range (len %d)", i, len(l.elems))
	}
	return l.elems[i], nil
}

func (l *PList) Set(i int, v any) error {
	if i < 0 || i >= len(l.elems) {
		return newRuntimeError("index-out-of-bounds", "list index %d out of range (len %d)", i, len(l.elems))
	}
	l.elems[i] = v
	return nil
}

func (l *PList) Add(v any) { l.elems = append(l.elems, v) }

func (l *PList) String() string { return fmt.Sprintf("%v", l.elems) }

// PMap backs the `Map`/`HashMap` whitelist entries with a native Go map,
// keyed by the key value itself, so `def`-typed keys (the common case for a
// map/list index shortcut, spec.md §4.2) compare with Go's == on that value.
type PMap struct {
	keys   []any
	values map[any]any
}

func NewPMap() *PMap {
	return &PMap{values: map[any]any{}}
}

// NewPMapFromStringMap wraps a host-supplied params map (the raw
// map[string]any Execute receives) into a PMap, so `params['a']`/`params.a`
// goes through the same dynamic get/put path as any other def-typed map.
func NewPMapFromStringMap(m map[string]any) *PMap {
	pm := NewPMap()
	for k, v := range m {
		pm.Put(k, v)
	}
	return pm
}

func (m *PMap) Get(key any) any { return m.values[key] }

func (m *PMap) Put(key, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *PMap) Len() int { return len(m.values) }

func (m *PMap) String() string { return fmt.Sprintf("%v", m.values) }

func asInt(v any) (int, error) {
	i, ok := toInt64(v)
	if !ok {
		return 0, newRuntimeError("bad-operand", "expected an integral index, got %v", v)
	}
	return int(i), nil
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float32:
		return int64(x), true
	case float64:
		return int64(x), true
	}
	return 0, false
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
