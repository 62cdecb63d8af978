package analyzer

import "github.com/painless-lang/painless/internal/registry"

// Variable is one declared local: its slot index in the function's local
// frame and its static type.
type Variable struct {
	Name string
	Type *registry.Type
	Slot int
}

// scope is one block's variable bindings. scopeStack models nested blocks
// as a slice of scopes, the shape the teacher's SymbolTable generalizes
// with parent links; blocks here are small enough that a slice-of-maps
// walked innermost-first is simpler and just as correct.
type scope struct {
	vars map[string]*Variable
}

func newScope() *scope { return &scope{vars: map[string]*Variable{}} }

// scopeStack tracks nested block scopes within one function (or the
// top-level script body) and hands out monotonically increasing local
// slots, matching the emitter's flat local-variable frame.
type scopeStack struct {
	scopes   []*scope
	nextSlot int
}

func newScopeStack() *scopeStack {
	return &scopeStack{scopes: []*scope{newScope()}}
}

func (s *scopeStack) push() { s.scopes = append(s.scopes, newScope()) }

func (s *scopeStack) pop() { s.scopes = s.scopes[:len(s.scopes)-1] }

// declare binds name in the innermost scope and assigns it the next free
// slot. Redeclaring a name already visible in the same scope is the
// caller's error to report; declare itself always succeeds.
func (s *scopeStack) declare(name string, typ *registry.Type) *Variable {
	v := &Variable{Name: name, Type: typ, Slot: s.nextSlot}
	s.nextSlot++
	top := s.scopes[len(s.scopes)-1]
	top.vars[name] = v
	return v
}

// declaredInCurrent reports whether name is already bound in the innermost
// scope (a redeclaration error, spec.md §7 "Resolution").
func (s *scopeStack) declaredInCurrent(name string) bool {
	_, ok := s.scopes[len(s.scopes)-1].vars[name]
	return ok
}

// lookup searches innermost-to-outermost scope for name.
func (s *scopeStack) lookup(name string) (*Variable, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}
