package registry

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Load parses the line-oriented whitelist format (spec.md §6) and builds a
// frozen Registry seeded with the primitives New already registers.
//
// Grammar, one entry per non-blank, non-comment line:
//
//	struct <name> <host-class>
//	method <struct> <name> <ret> <args...>
//	field  <struct> <name> <type>
//	ctor   <struct> <args...>
//	cast   <from> <to> [explicit] [via <struct> <method>]
//
// Ordering is enforced as the format requires: every struct line must
// precede any member (method/field/ctor) line, and every cast line must
// follow all member lines.
func Load(src io.Reader) (*Registry, error) {
	r := New()
	const (
		phaseStructs = iota
		phaseMembers
		phaseCasts
	)
	phase := phaseStructs

	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		kind := fields[0]

		if phase == phaseCasts && (kind == "method" || kind == "field" || kind == "ctor") {
			return nil, fmt.Errorf("whitelist line %d: member declarations must precede all casts", lineNo)
		}
		switch kind {
		case "struct":
			if phase != phaseStructs {
				return nil, fmt.Errorf("whitelist line %d: struct declarations must precede all members", lineNo)
			}
			if len(fields) < 2 {
				return nil, fmt.Errorf("whitelist line %d: malformed struct entry", lineNo)
			}
			name := fields[1]
			if err := r.DefineStruct(name, ""); err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
		case "method":
			phase = phaseMembers
			if len(fields) < 4 {
				return nil, fmt.Errorf("whitelist line %d: malformed method entry", lineNo)
			}
			structName, name, retName := fields[1], fields[2], fields[3]
			ret := r.LookupType(retName)
			if ret == nil {
				return nil, fmt.Errorf("whitelist line %d: unknown return type %q", lineNo, retName)
			}
			params, err := r.resolveParamTypes(fields[4:])
			if err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
			if err := r.DefineMethod(structName, &Method{
				Name: name, Params: params, Return: ret, HandleTag: "invokevirtual",
			}); err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
		case "field":
			phase = phaseMembers
			if len(fields) != 4 {
				return nil, fmt.Errorf("whitelist line %d: malformed field entry", lineNo)
			}
			structName, name, typeName := fields[1], fields[2], fields[3]
			typ := r.LookupType(typeName)
			if typ == nil {
				return nil, fmt.Errorf("whitelist line %d: unknown field type %q", lineNo, typeName)
			}
			if err := r.DefineField(structName, &Field{Name: name, Type: typ}); err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
		case "ctor":
			phase = phaseMembers
			if len(fields) < 2 {
				return nil, fmt.Errorf("whitelist line %d: malformed ctor entry", lineNo)
			}
			structName := fields[1]
			params, err := r.resolveParamTypes(fields[2:])
			if err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
			ctorType := r.LookupType(structName)
			if ctorType == nil {
				return nil, fmt.Errorf("whitelist line %d: unknown struct %q", lineNo, structName)
			}
			if err := r.DefineCtor(structName, &Method{
				Params: params, Return: ctorType, HandleTag: "newinvokespecial",
			}); err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
		case "cast":
			phase = phaseCasts
			t, err := r.parseCastLine(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
			if err := r.DefineCast(t); err != nil {
				return nil, fmt.Errorf("whitelist line %d: %w", lineNo, err)
			}
		default:
			return nil, fmt.Errorf("whitelist line %d: unknown entry kind %q", lineNo, kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := r.Freeze(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) resolveParamTypes(names []string) ([]*Type, error) {
	params := make([]*Type, 0, len(names))
	for _, n := range names {
		t := r.LookupType(n)
		if t == nil {
			return nil, fmt.Errorf("unknown parameter type %q", n)
		}
		params = append(params, t)
	}
	return params, nil
}

func (r *Registry) parseCastLine(fields []string) (*Transform, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("malformed cast entry")
	}
	from := r.LookupType(fields[0])
	to := r.LookupType(fields[1])
	if from == nil || to == nil {
		return nil, fmt.Errorf("unknown cast endpoint %q/%q", fields[0], fields[1])
	}
	t := &Transform{From: from, To: to}
	rest := fields[2:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "explicit":
			t.Explicit = true
		case "via":
			if i+2 >= len(rest) {
				return nil, fmt.Errorf("cast %s->%s: 'via' requires <struct> <method>", from, to)
			}
			structName, methodName := rest[i+1], rest[i+2]
			s, ok := r.structs[structName]
			if !ok {
				return nil, fmt.Errorf("cast %s->%s: unknown bridge struct %q", from, to, structName)
			}
			bridge := s.LookupMethod(MethodKey{Name: methodName, Arity: 0})
			if bridge == nil {
				bridge = s.LookupMethod(MethodKey{Name: methodName, Arity: 1})
			}
			if bridge == nil {
				return nil, fmt.Errorf("cast %s->%s: unknown bridge method %s.%s", from, to, structName, methodName)
			}
			t.Bridge = bridge
			i += 2
		default:
			return nil, fmt.Errorf("cast %s->%s: unexpected token %q", from, to, rest[i])
		}
	}
	return t, nil
}
