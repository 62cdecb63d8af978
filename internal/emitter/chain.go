package emitter

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/token"
	"github.com/painless-lang/painless/internal/vm"
)

// emitChainLoad compiles a Chain for its value: Primary (nil for a
// top-level bare function call, see analyzer/chain.go's
// analyzeTopLevelCall) followed by each link's get/call in turn. Every
// link carries its own pre-link running type in LinkMeta().Before, so the
// emitter never has to re-derive it by walking the chain a second time.
func (e *emitter) emitChainLoad(c *ast.Chain) {
	if c.Primary == nil {
		call := c.Links[0].(*ast.CallLink)
		e.emitTopLevelCall(call)
		for _, link := range c.Links[1:] {
			e.emitLinkLoad(link)
		}
		return
	}
	e.emitExpr(c.Primary)
	for _, link := range c.Links {
		e.emitLinkLoad(link)
	}
}

// emitTopLevelCall is a direct call to a script-level function: no
// receiver is ever pushed, so Invoke's *vm.Function payload case pops
// exactly the declared argument count.
func (e *emitter) emitTopLevelCall(call *ast.CallLink) {
	line := call.Pos().Line
	for _, arg := range call.Args {
		e.emitExpr(arg)
	}
	fn, ok := call.Method.(*ast.FunctionDecl)
	if !ok || fn == nil {
		e.errf(call.Pos(), "internal: unresolved function call %s", call.Name)
		e.emitSimple(vm.PushNull, line)
		return
	}
	target := e.funcTarget(fn)
	idx := e.chunk.AddConstant(target)
	e.emit(vm.Invoke, byte(len(call.Args)), idx, line)
}

func (e *emitter) emitLinkLoad(link ast.Link) {
	switch l := link.(type) {
	case *ast.FieldLink:
		e.emitFieldLinkLoad(l)
	case *ast.IndexLink:
		e.emitIndexLinkLoad(l)
	case *ast.CallLink:
		e.emitCallLinkLoad(l)
	default:
		e.errf(link.Pos(), "internal: unhandled link %T", link)
	}
}

func (e *emitter) emitFieldLinkLoad(l *ast.FieldLink) {
	line := l.Pos().Line
	before := l.LinkMeta().Before
	if before != nil && before.Sort == registry.Array && l.Name == "length" {
		e.emitSimple(vm.ArrayLen, line)
		return
	}
	if isDynamicType(before) {
		e.emitDynamicFieldGet(l.Name, line)
		return
	}
	field := before.Struct.LookupField(l.Name)
	if field == nil {
		e.emitDynamicFieldGet(l.Name, line)
		return
	}
	idx := e.chunk.AddConstant(field)
	e.emit(vm.GetField, 0, idx, line)
}

func (e *emitter) emitDynamicFieldGet(name string, line int) {
	desc := &vm.CallSiteDescriptor{Tag: vm.TagLoadField, Name: name, Arity: 1}
	idx := e.chunk.AddConstant(desc)
	e.emit(vm.InvokeDynamic, 1, idx, line)
}

func (e *emitter) emitIndexLinkLoad(l *ast.IndexLink) {
	line := l.Pos().Line
	before := l.LinkMeta().Before
	e.emitExpr(l.Index)
	if before != nil && before.Sort == registry.Array {
		e.emitSimple(vm.ArrayLoad, line)
		return
	}
	// List/Map indexing resolves dynamically regardless of whether the
	// receiver's static type was pinned down (analyzer/chain.go's
	// analyzeIndexLink forces it), since neither PList nor PMap is
	// Instance-backed.
	desc := &vm.CallSiteDescriptor{Tag: vm.TagArrayLoad, Arity: 2}
	idx := e.chunk.AddConstant(desc)
	e.emit(vm.InvokeDynamic, 2, idx, line)
}

// emitCallLinkLoad emits a method call against the chain's current running
// value. A call whose receiver is one of the VM's native-Go-backed types —
// List, Map, HashMap, Iterator, Stream, String — always goes through
// InvokeDynamic even when the analyzer resolved a concrete *registry.Method
// for it, because none of them construct an *Instance at runtime for
// Invoke's static path to dispatch through (see vm/builtin.go).
func (e *emitter) emitCallLinkLoad(l *ast.CallLink) {
	line := l.Pos().Line
	before := l.LinkMeta().Before

	method, resolved := l.Method.(*registry.Method)
	if !resolved || isDynamicType(before) || isBuiltinCollectionStruct(before) {
		for _, arg := range l.Args {
			e.emitExpr(arg)
		}
		desc := &vm.CallSiteDescriptor{Tag: vm.TagMethodCall, Name: l.Name, Arity: len(l.Args) + 1}
		idx := e.chunk.AddConstant(desc)
		e.emit(vm.InvokeDynamic, byte(len(l.Args)+1), idx, line)
		return
	}

	for _, arg := range l.Args {
		e.emitExpr(arg)
	}
	idx := e.chunk.AddConstant(method)
	e.emit(vm.Invoke, byte(len(l.Args)), idx, line)
}

// emitChainAssign implements every Chain-target assignment shape — simple,
// compound, and pre/post inc/dec — against a FieldLink or IndexLink
// terminal link, using hidden temp slots to reorder values on the stack
// since the instruction set has no Swap: the receiver (and index, for
// IndexLink) must sit underneath the value PutField/ArrayStore or their
// dynamic equivalents expect on top, while the assignment expression
// itself still needs to yield a value.
func (e *emitter) emitChainAssign(n *ast.Assign, c *ast.Chain, line int) {
	last := c.Links[len(c.Links)-1]
	e.emitExpr(c.Primary)
	for _, link := range c.Links[:len(c.Links)-1] {
		e.emitLinkLoad(link)
	}

	recvSlot := e.allocTemp()
	e.chunk.Emit(vm.Store, 0, uint16(recvSlot), line)

	idxSlot := -1
	if idxLink, ok := last.(*ast.IndexLink); ok {
		e.emitExpr(idxLink.Index)
		idxSlot = e.allocTemp()
		e.chunk.Emit(vm.Store, 0, uint16(idxSlot), line)
	}

	targetType := n.Target.Meta().Actual

	if n.Op == token.INC || n.Op == token.DEC {
		e.emitTerminalGet(last, recvSlot, idxSlot, line)
		curSlot := e.allocTemp()
		e.chunk.Emit(vm.Store, 0, uint16(curSlot), line)
		e.chunk.Emit(vm.Load, 0, uint16(curSlot), line)
		e.emitConst(int32(1), line)
		op := token.PLUS
		if n.Op == token.DEC {
			op = token.MINUS
		}
		e.emitCompoundOp(op, targetType, targetType, line)
		e.narrowTo(targetType, line)
		valSlot := e.allocTemp()
		e.chunk.Emit(vm.Store, 0, uint16(valSlot), line)
		e.emitTerminalPut(last, recvSlot, idxSlot, valSlot, line)
		if n.Prefix {
			e.chunk.Emit(vm.Load, 0, uint16(valSlot), line)
		} else {
			e.chunk.Emit(vm.Load, 0, uint16(curSlot), line)
		}
		return
	}

	if n.Op == token.ASSIGN {
		e.emitExpr(n.Value)
		valSlot := e.allocTemp()
		e.chunk.Emit(vm.Store, 0, uint16(valSlot), line)
		e.emitTerminalPut(last, recvSlot, idxSlot, valSlot, line)
		e.chunk.Emit(vm.Load, 0, uint16(valSlot), line)
		return
	}

	// compound assignment
	e.emitTerminalGet(last, recvSlot, idxSlot, line)
	e.emitExpr(n.Value)
	e.emitCompoundOp(compoundArithOp(n.Op), targetType, n.Value.Meta().Actual, line)
	e.narrowTo(targetType, line)
	valSlot := e.allocTemp()
	e.chunk.Emit(vm.Store, 0, uint16(valSlot), line)
	e.emitTerminalPut(last, recvSlot, idxSlot, valSlot, line)
	e.chunk.Emit(vm.Load, 0, uint16(valSlot), line)
}

// emitTerminalGet loads the receiver (and index) back from their temp
// slots and emits the link's get operation, leaving the current value on
// the stack.
func (e *emitter) emitTerminalGet(last ast.Link, recvSlot, idxSlot, line int) {
	e.chunk.Emit(vm.Load, 0, uint16(recvSlot), line)
	switch t := last.(type) {
	case *ast.FieldLink:
		before := t.LinkMeta().Before
		if isDynamicType(before) {
			e.emitDynamicFieldGet(t.Name, line)
			return
		}
		field := before.Struct.LookupField(t.Name)
		if field == nil {
			e.emitDynamicFieldGet(t.Name, line)
			return
		}
		idx := e.chunk.AddConstant(field)
		e.emit(vm.GetField, 0, idx, line)
	case *ast.IndexLink:
		before := t.LinkMeta().Before
		e.chunk.Emit(vm.Load, 0, uint16(idxSlot), line)
		if before != nil && before.Sort == registry.Array {
			e.emitSimple(vm.ArrayLoad, line)
			return
		}
		desc := &vm.CallSiteDescriptor{Tag: vm.TagArrayLoad, Arity: 2}
		idx := e.chunk.AddConstant(desc)
		e.emit(vm.InvokeDynamic, 2, idx, line)
	}
}

// emitTerminalPut loads the receiver (and index, and value) back from
// their temp slots and emits the link's store operation, leaving nothing
// on the stack.
func (e *emitter) emitTerminalPut(last ast.Link, recvSlot, idxSlot, valSlot, line int) {
	e.chunk.Emit(vm.Load, 0, uint16(recvSlot), line)
	switch t := last.(type) {
	case *ast.FieldLink:
		before := t.LinkMeta().Before
		e.chunk.Emit(vm.Load, 0, uint16(valSlot), line)
		if isDynamicType(before) {
			desc := &vm.CallSiteDescriptor{Tag: vm.TagStoreField, Name: t.Name, Arity: 2}
			idx := e.chunk.AddConstant(desc)
			e.emit(vm.InvokeDynamic, 2, idx, line)
			return
		}
		field := before.Struct.LookupField(t.Name)
		if field == nil {
			desc := &vm.CallSiteDescriptor{Tag: vm.TagStoreField, Name: t.Name, Arity: 2}
			idx := e.chunk.AddConstant(desc)
			e.emit(vm.InvokeDynamic, 2, idx, line)
			return
		}
		idx := e.chunk.AddConstant(field)
		e.emit(vm.PutField, 0, idx, line)
	case *ast.IndexLink:
		before := t.LinkMeta().Before
		e.chunk.Emit(vm.Load, 0, uint16(idxSlot), line)
		e.chunk.Emit(vm.Load, 0, uint16(valSlot), line)
		if before != nil && before.Sort == registry.Array {
			e.emitSimple(vm.ArrayStore, line)
			return
		}
		desc := &vm.CallSiteDescriptor{Tag: vm.TagArrayStore, Arity: 3}
		idx := e.chunk.AddConstant(desc)
		e.emit(vm.InvokeDynamic, 3, idx, line)
	}
}
