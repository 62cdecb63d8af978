package vm

import (
	"strconv"

	"github.com/painless-lang/painless/internal/registry"
)

// builtinCall handles method calls against the VM's own native runtime
// values (PList/PMap, plus the small streaming surface scenario 5's
// `xs.stream().mapToInt(...).sum()` needs) — the whitelist entries
// SPEC_FULL.md's end-to-end table backs with a Go type rather than a
// registry.Struct, since there is no host class for them to dispatch through.
// ok is false when recv/name isn't one of these, so the caller falls through
// to registry-backed dispatch.
func builtinCall(m *Machine, recv any, name string, args []any) (value any, err error, ok bool) {
	switch r := recv.(type) {
	case *PList:
		return listMethod(m, r, name, args)
	case *PMap:
		return mapMethod(r, name, args)
	case string:
		return stringMethod(r, name, args)
	}
	return nil, nil, false
}

// stringMethod backs String's whitelisted methods (registry.NewBuiltins
// registers "length"/"equals" on the String struct) against a raw Go
// string, the same no-Instance-behind-it shape List/Map need builtinCall
// for: a script-level String value is a bare Go string, never wrapped in
// an *Instance.
func stringMethod(s, name string, args []any) (any, error, bool) {
	switch name {
	case "length":
		return int32(len([]rune(s))), nil, true
	case "equals":
		other, ok := args[0].(string)
		return ok && other == s, nil, true
	case "parseInt":
		// the String->int cast registry.NewBuiltins wires as a bridge
		// method calls through here rather than a static Invoke, since the
		// operand being cast is a bare Go value, never an *Instance (the
		// same reason List/Map/String methods do too).
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, newRuntimeError("number-format", "cannot parse %q as int", s), true
		}
		return int32(i), nil, true
	}
	return nil, nil, false
}

func listMethod(m *Machine, l *PList, name string, args []any) (any, error, bool) {
	switch name {
	case "add":
		l.Add(args[0])
		return nil, nil, true
	case "get":
		i, err := asInt(args[0])
		if err != nil {
			return nil, err, true
		}
		v, err := l.Get(i)
		return v, err, true
	case "set":
		i, err := asInt(args[0])
		if err != nil {
			return nil, err, true
		}
		return nil, l.Set(i, args[1]), true
	case "size", "length":
		return int32(l.Len()), nil, true
	case "stream":
		return l, nil, true // this VM's List already serves as its own stream
	case "mapToInt", "map":
		fn, ok := args[0].(*BoundFunc)
		if !ok {
			return nil, newRuntimeError("bad-operand", "%s expects a lambda argument", name), true
		}
		mapped := make([]any, l.Len())
		for i := range mapped {
			v, _ := l.Get(i)
			r, err := m.callBound(fn, []any{v})
			if err != nil {
				return nil, err, true
			}
			mapped[i] = r
		}
		return NewPList(mapped), nil, true
	case "sum":
		var total int64
		var isFloat bool
		var ftotal float64
		for i := 0; i < l.Len(); i++ {
			v, _ := l.Get(i)
			if f, ok := v.(float64); ok {
				isFloat = true
				ftotal += f
				continue
			}
			iv, _ := toInt64(v)
			total += iv
			ftotal += float64(iv)
		}
		if isFloat {
			return ftotal, nil, true
		}
		return total, nil, true
	}
	return nil, nil, false
}

func mapMethod(pm *PMap, name string, args []any) (any, error, bool) {
	switch name {
	case "get":
		return pm.Get(args[0]), nil, true
	case "put":
		pm.Put(args[0], args[1])
		return nil, nil, true
	case "size":
		return int32(pm.Len()), nil, true
	case "containsKey":
		_, exists := pm.values[args[0]]
		return exists, nil, true
	}
	return nil, nil, false
}

// invokeHostMethod runs a registry-whitelisted method against an Instance.
// This reference VM backs only the fixed set of builtin exception/record
// classes the end-to-end scenarios name (spec.md §8); any other whitelisted
// host method has no Go implementation behind it, is not checked when the
// registry is loaded, and fails at run time with an unbound-host-method error.
func invokeHostMethod(obj *Instance, method *registry.Method, args []any) (any, error) {
	switch method.Name {
	case "getMessage":
		return obj.Fields["message"], nil
	case "toString":
		return obj.String(), nil
	}
	return nil, newRuntimeError("unbound-host-method", "%s.%s has no runtime binding", obj.StructName, method.Name)
}
