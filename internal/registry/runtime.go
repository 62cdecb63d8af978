package registry

import "strings"

// RuntimeClass is the per-struct getter/setter/method table the dynamic
// (def) dispatcher uses at runtime (spec.md §4.1 "Runtime dispatch table").
// It is derived once at Freeze from the struct's own methods: a zero-arg
// method getFoo (or isFoo) becomes a getter for property foo; a one-arg
// setFoo becomes a setter. Explicit fields always win over a synthesized
// property of the same name.
type RuntimeClass struct {
	Struct  *Struct
	Getters map[string]*Method
	Setters map[string]*Method
	Methods map[MethodKey]*Method
}

// RuntimeClassFor returns the derived dispatch table for a struct name, or
// nil if the registry has not been frozen or the struct is unknown.
func (r *Registry) RuntimeClassFor(name string) *RuntimeClass {
	if !r.frozen {
		return nil
	}
	return r.runtime[name]
}

func deriveRuntimeTable(structs map[string]*Struct) map[string]*RuntimeClass {
	out := make(map[string]*RuntimeClass, len(structs))
	for name, s := range structs {
		rc := &RuntimeClass{
			Struct:  s,
			Getters: make(map[string]*Method),
			Setters: make(map[string]*Method),
			Methods: make(map[MethodKey]*Method),
		}
		for key, m := range s.Methods {
			rc.Methods[key] = m
			switch {
			case key.Arity == 0 && strings.HasPrefix(key.Name, "get") && len(key.Name) > 3:
				prop := lowerFirst(key.Name[3:])
				rc.Getters[prop] = m
			case key.Arity == 0 && strings.HasPrefix(key.Name, "is") && len(key.Name) > 2:
				prop := lowerFirst(key.Name[2:])
				rc.Getters[prop] = m
			case key.Arity == 1 && strings.HasPrefix(key.Name, "set") && len(key.Name) > 3:
				prop := lowerFirst(key.Name[3:])
				rc.Setters[prop] = m
			}
		}
		// Explicit fields win over synthesized property names.
		for fname := range s.Fields {
			delete(rc.Getters, fname)
			delete(rc.Setters, fname)
		}
		out[name] = rc
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
