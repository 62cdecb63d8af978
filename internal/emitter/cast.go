package emitter

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/vm"
)

// emitCast emits x's value then applies the from->to conversion on top of
// it. from/to come straight off the analyzer's decorations: either an
// analyzer-inserted *ast.Unary cast wrapper's (X.Actual, Actual) pair, or a
// genuine user explicit-cast expression's same shape.
func (e *emitter) emitCast(x ast.Expression, from, to *registry.Type, line int) {
	e.emitExpr(x)
	e.applyCast(from, to, line)
}

// applyCast emits the conversion itself, assuming the value to convert is
// already on top of the stack. Every cast site — implicit coercions the
// analyzer inserted and explicit user casts alike — looks the conversion
// up with explicit=true: LookupCast(explicit=true) tries the explicit key
// first and falls back to the implicit one, so it only ever widens what it
// will find, never narrows a conversion the analyzer already approved.
func (e *emitter) applyCast(from, to *registry.Type, line int) {
	if from == nil || to == nil || from.Equals(to) || to.Equals(e.reg.DefType()) {
		return
	}
	t := e.reg.LookupCast(from, to, true)
	if t == nil {
		// the analyzer already rejected an illegal cast at this site; there
		// is nothing sound left to emit.
		return
	}
	if t.IsDirectCoercion() {
		idx := e.chunk.AddConstant(to)
		e.emit(vm.Coerce, 0, idx, line)
		return
	}
	if t.Upcast != nil {
		idx := e.chunk.AddConstant(t.Upcast)
		e.emit(vm.CastCheck, 0, idx, line)
	}
	if t.Bridge != nil {
		// a bridge's receiver is the value already on the stack; none of
		// this registry's bridges (int<->String) are Go-Instance-backed,
		// so the call always goes through dynamic dispatch the same way a
		// List/Map/String method call does (vm/builtin.go).
		argc := len(t.Bridge.Params)
		if !t.Bridge.Static {
			argc++
		}
		desc := &vm.CallSiteDescriptor{Tag: vm.TagMethodCall, Name: t.Bridge.Name, Arity: argc}
		idx := e.chunk.AddConstant(desc)
		e.emit(vm.InvokeDynamic, byte(argc), idx, line)
	}
	if t.Downcast != nil {
		idx := e.chunk.AddConstant(t.Downcast)
		e.emit(vm.CastCheck, 0, idx, line)
	}
}

// narrowTo backs compound-assignment and inc/dec: the arithmetic result
// sitting on top of the stack must be narrowed back to the assignment
// target's own static type. It bypasses registry.LookupCast/Transform
// entirely and emits a direct Coerce when the target is a primitive,
// because the result's "from" type is frequently unknowable statically —
// either operand may have been `def`-typed, so the arithmetic ran through
// InvokeDynamic and produced whatever Go type the runtime decided on.
// Coerce's runtime coerce() inspects the actual value, not a declared
// source type, so this sidesteps the problem entirely. A Def/Object/Array
// target needs no narrowing at all: a dynamic or reference target can
// already hold the result verbatim.
func (e *emitter) narrowTo(t *registry.Type, line int) {
	if t == nil || !t.IsPrimitive() {
		return
	}
	idx := e.chunk.AddConstant(t)
	e.emit(vm.Coerce, 0, idx, line)
}
