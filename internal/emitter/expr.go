package emitter

import (
	"regexp"
	"strings"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/token"
	"github.com/painless-lang/painless/internal/vm"
)

// isDynamicType is the uniform dynamic-vs-static dispatch rule spec.md
// §4.3 applies to both arithmetic and comparison: a `def` operand (or one
// whose static type analysis failed to pin down) always routes through
// InvokeDynamic rather than the fixed-width static opcode, since the
// emitter cannot know which concrete Go type it will hold at runtime.
func isDynamicType(t *registry.Type) bool {
	return t == nil || t.Sort == registry.Def
}

// isBuiltinCollectionStruct reports whether t's runtime representation is
// one of the reference VM's native Go values (PList/PMap/a bare string)
// rather than an *Instance — List, Map, HashMap, Iterator, Stream and
// String all resolve a method statically against the registry (they are
// ordinary whitelisted structs), but none of them has a host class behind
// it for invokeHostMethod to dispatch through, so every call against one
// must go through InvokeDynamic's builtin-aware path (vm/builtin.go)
// regardless of how confidently it resolved.
func isBuiltinCollectionStruct(t *registry.Type) bool {
	if t == nil || t.Struct == nil {
		return false
	}
	switch t.Struct.Name {
	case "List", "Map", "HashMap", "Iterator", "Stream", "String":
		return true
	}
	return false
}

// emitExpr compiles one expression, leaving exactly one value on the
// operand stack — the uniform invariant every emission site below relies
// on, grounded on the teacher's compiler_expressions.go dispatch.
func (e *emitter) emitExpr(x ast.Expression) {
	if x == nil {
		e.emitSimple(vm.PushNull, 0)
		return
	}
	line := x.Pos().Line
	switch n := x.(type) {
	case *ast.NumberLit:
		e.emitConst(n.Constant.Value, line)
	case *ast.BoolLit:
		if n.Value {
			e.emitSimple(vm.PushTrue, line)
		} else {
			e.emitSimple(vm.PushFalse, line)
		}
	case *ast.NullLit:
		e.emitSimple(vm.PushNull, line)
	case *ast.StringLit:
		e.emitConst(n.Value, line)
	case *ast.RegexLit:
		e.emitRegexLit(n, line)
	case *ast.Ident:
		e.emitIdent(n, line)
	case *ast.Unary:
		e.emitUnary(n, line)
	case *ast.Binary:
		e.emitBinary(n, line)
	case *ast.Ternary:
		e.emitTernary(n, line)
	case *ast.InstanceOf:
		e.emitInstanceOf(n, line)
	case *ast.Assign:
		e.emitAssign(n, line)
	case *ast.Chain:
		e.emitChainLoad(n)
	case *ast.FuncRef:
		e.emitFuncRef(n, line)
	case *ast.ListInit:
		e.emitListInit(n, line)
	case *ast.MapInit:
		e.emitMapInit(n, line)
	case *ast.ArrayInit:
		e.emitArrayInit(n, line)
	case *ast.NewObjectExpr:
		e.emitNewObject(n, line)
	case *ast.NewArrayExpr:
		e.emitNewArray(n, line)
	default:
		e.errf(x.Pos(), "internal: unhandled expression %T", x)
		e.emitSimple(vm.PushNull, line)
	}
}

// emitRegexLit compiles the pattern once at emit time and pushes the
// resulting *regexp.Regexp as a constant — MATCHES/FINDS (spec.md §3)
// never sees the source pattern text at runtime, only the compiled form.
func (e *emitter) emitRegexLit(n *ast.RegexLit, line int) {
	pattern := n.Pattern
	if strings.Contains(n.Flags, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		e.errf(n.Pos(), "invalid regex pattern %q: %v", n.Pattern, err)
		e.emitSimple(vm.PushNull, line)
		return
	}
	e.emitConst(re, line)
}

func (e *emitter) emitIdent(n *ast.Ident, line int) {
	if n.Name == "this" {
		// a bare `this` value only ever appears as a FuncRef receiver
		// (this::method), never evaluated for its own value.
		e.emitSimple(vm.PushNull, line)
		return
	}
	e.emit(vm.Load, 0, uint16(n.Slot), line)
}

func (e *emitter) emitUnary(n *ast.Unary, line int) {
	if n.CastType != "" {
		e.emitCast(n.X, n.X.Meta().Actual, n.Meta().Actual, line)
		return
	}
	switch n.Op {
	case token.NOT:
		e.emitExpr(n.X)
		e.emitSimple(vm.Not, line)
	case token.BIT_NOT:
		e.emitExpr(n.X)
		e.emitSimple(vm.BitNot, line)
	case token.MINUS:
		e.emitExpr(n.X)
		e.emitSimple(vm.Neg, line)
	case token.PLUS:
		e.emitExpr(n.X)
		e.emitSimple(vm.Pos, line)
	default:
		e.errf(n.Pos(), "internal: unhandled unary operator")
	}
}

func (e *emitter) emitBinary(n *ast.Binary, line int) {
	switch n.Op {
	case token.AND:
		e.emitExpr(n.L)
		shortCircuit := e.emitJump(vm.JumpIfFalseNP, line)
		e.chunk.Emit(vm.Pop, 1, 0, line)
		e.emitExpr(n.R)
		e.patchJump(shortCircuit)
		return
	case token.OR:
		e.emitExpr(n.L)
		shortCircuit := e.emitJump(vm.JumpIfTrueNP, line)
		e.chunk.Emit(vm.Pop, 1, 0, line)
		e.emitExpr(n.R)
		e.patchJump(shortCircuit)
		return
	case token.MATCHES, token.FINDS:
		e.emitExpr(n.L)
		e.emitExpr(n.R)
		tag := vm.TagMatches
		if n.Op == token.FINDS {
			tag = vm.TagFinds
		}
		desc := &vm.CallSiteDescriptor{Tag: tag}
		idx := e.chunk.AddConstant(desc)
		e.emit(vm.InvokeDynamic, 2, idx, line)
		return
	}

	lt, rt := n.L.Meta().Actual, n.R.Meta().Actual
	dynamic := isDynamicType(lt) || isDynamicType(rt)

	switch n.Op {
	case token.EQ, token.NEQ, token.EQR, token.NEQR, token.LT, token.LTE, token.GT, token.GTE:
		e.emitExpr(n.L)
		e.emitExpr(n.R)
		if dynamic {
			desc := &vm.CallSiteDescriptor{Tag: compareTag(n.Op)}
			idx := e.chunk.AddConstant(desc)
			e.emit(vm.InvokeDynamic, 2, idx, line)
		} else {
			e.emitSimple(compareOpcode(n.Op), line)
		}
	default:
		e.emitExpr(n.L)
		e.emitExpr(n.R)
		if dynamic {
			desc := &vm.CallSiteDescriptor{Tag: arithTag(n.Op)}
			idx := e.chunk.AddConstant(desc)
			e.emit(vm.InvokeDynamic, 2, idx, line)
		} else {
			e.emitSimple(arithOpcode(n.Op), line)
		}
	}
}

func arithOpcode(op token.Type) vm.OpCode {
	switch op {
	case token.PLUS:
		return vm.Add
	case token.MINUS:
		return vm.Sub
	case token.STAR:
		return vm.Mul
	case token.SLASH:
		return vm.Div
	case token.PERCENT:
		return vm.Rem
	case token.BIT_AND:
		return vm.BitAnd
	case token.BIT_OR:
		return vm.BitOr
	case token.BIT_XOR:
		return vm.BitXor
	case token.SHL:
		return vm.Shl
	case token.SHR:
		return vm.Shr
	case token.USHR:
		return vm.Ushr
	}
	return vm.Add
}

func arithTag(op token.Type) vm.Tag {
	switch op {
	case token.PLUS:
		return vm.TagAdd
	case token.MINUS:
		return vm.TagSub
	case token.STAR:
		return vm.TagMul
	case token.SLASH:
		return vm.TagDiv
	case token.PERCENT:
		return vm.TagRem
	case token.BIT_AND:
		return vm.TagBitAnd
	case token.BIT_OR:
		return vm.TagBitOr
	case token.BIT_XOR:
		return vm.TagBitXor
	case token.SHL:
		return vm.TagShl
	case token.SHR:
		return vm.TagShr
	case token.USHR:
		return vm.TagUshr
	}
	return vm.TagAdd
}

func compareOpcode(op token.Type) vm.OpCode {
	switch op {
	case token.EQ, token.EQR:
		return vm.CmpEq
	case token.NEQ, token.NEQR:
		return vm.CmpNe
	case token.LT:
		return vm.CmpLt
	case token.LTE:
		return vm.CmpLe
	case token.GT:
		return vm.CmpGt
	case token.GTE:
		return vm.CmpGe
	}
	return vm.CmpEq
}

func compareTag(op token.Type) vm.Tag {
	switch op {
	case token.EQ, token.EQR:
		return vm.TagCmpEq
	case token.NEQ, token.NEQR:
		return vm.TagCmpNe
	case token.LT:
		return vm.TagCmpLt
	case token.LTE:
		return vm.TagCmpLe
	case token.GT:
		return vm.TagCmpGt
	case token.GTE:
		return vm.TagCmpGe
	}
	return vm.TagCmpEq
}

func (e *emitter) emitTernary(n *ast.Ternary, line int) {
	e.emitExpr(n.Cond)
	elseJump := e.emitJump(vm.JumpIfFalse, line)
	e.emitExpr(n.Then)
	endJump := e.emitJump(vm.Jump, line)
	e.patchJump(elseJump)
	e.emitExpr(n.Else)
	e.patchJump(endJump)
}

func (e *emitter) emitInstanceOf(n *ast.InstanceOf, line int) {
	e.emitExpr(n.X)
	t := e.resolveTypeForEmit(n.TypeName)
	idx := e.chunk.AddConstant(t)
	e.emit(vm.InstanceOf, 0, idx, line)
}

// emitAssign dispatches on the assignment target's shape: a bare Ident
// stores directly into its local slot, a Chain routes through the
// temp-slot stack-reordering pattern chain.go implements (the VM has no
// Swap opcode, and PutField/ArrayStore both need the value on top while
// the assignment expression itself must still yield that value).
func (e *emitter) emitAssign(n *ast.Assign, line int) {
	if ident, ok := n.Target.(*ast.Ident); ok {
		e.emitIdentAssign(n, ident, line)
		return
	}
	if chain, ok := n.Target.(*ast.Chain); ok {
		e.emitChainAssign(n, chain, line)
		return
	}
	e.errf(n.Pos(), "internal: unassignable target %T", n.Target)
}

func (e *emitter) emitIdentAssign(n *ast.Assign, ident *ast.Ident, line int) {
	slot := ident.Slot
	targetType := n.Target.Meta().Actual

	if n.Op == token.INC || n.Op == token.DEC {
		e.emitIncDecSlot(slot, targetType, n.Op == token.DEC, n.Prefix, line)
		return
	}

	if n.Op == token.ASSIGN {
		e.emitExpr(n.Value)
		e.emitSimple(vm.Dup, line)
		e.emit(vm.Store, 0, uint16(slot), line)
		return
	}

	// compound assignment: target = target op value, narrowed back down.
	e.emit(vm.Load, 0, uint16(slot), line)
	e.emitExpr(n.Value)
	e.emitCompoundOp(compoundArithOp(n.Op), targetType, n.Value.Meta().Actual, line)
	e.narrowTo(targetType, line)
	e.emitSimple(vm.Dup, line)
	e.emit(vm.Store, 0, uint16(slot), line)
}

// compoundArithOp maps a compound-assignment operator token (PLUS_EQ, ...)
// to the plain binary operator it desugars to.
func compoundArithOp(op token.Type) token.Type {
	switch op {
	case token.PLUS_EQ:
		return token.PLUS
	case token.MINUS_EQ:
		return token.MINUS
	case token.STAR_EQ:
		return token.STAR
	case token.SLASH_EQ:
		return token.SLASH
	case token.PCT_EQ:
		return token.PERCENT
	case token.AND_EQ:
		return token.BIT_AND
	case token.OR_EQ:
		return token.BIT_OR
	case token.XOR_EQ:
		return token.BIT_XOR
	case token.SHL_EQ:
		return token.SHL
	case token.SHR_EQ:
		return token.SHR
	case token.USHR_EQ:
		return token.USHR
	}
	return token.PLUS
}

// emitCompoundOp emits the arithmetic for `target op value` with [cur,
// val] already on the stack, picking static or dynamic dispatch from
// whichever of the target's declared type or the value's analyzed type is
// itself `def`.
func (e *emitter) emitCompoundOp(op token.Type, targetType, valueType *registry.Type, line int) {
	if isDynamicType(targetType) || isDynamicType(valueType) {
		desc := &vm.CallSiteDescriptor{Tag: arithTag(op)}
		idx := e.chunk.AddConstant(desc)
		e.emit(vm.InvokeDynamic, 2, idx, line)
		return
	}
	e.emitSimple(arithOpcode(op), line)
}

// emitIncDecSlot implements ++/-- against a local slot: postfix leaves the
// pre-increment value as the expression's result, prefix leaves the
// post-increment value.
func (e *emitter) emitIncDecSlot(slot int, targetType *registry.Type, isDec, prefix bool, line int) {
	op := token.PLUS
	if isDec {
		op = token.MINUS
	}
	e.emit(vm.Load, 0, uint16(slot), line)
	if !prefix {
		e.emitSimple(vm.Dup, line)
	}
	e.emitConst(int32(1), line)
	e.emitCompoundOp(op, targetType, targetType, line)
	e.narrowTo(targetType, line)
	if prefix {
		e.emitSimple(vm.Dup, line)
	}
	e.emit(vm.Store, 0, uint16(slot), line)
}

func (e *emitter) emitListInit(n *ast.ListInit, line int) {
	for _, el := range n.Elems {
		e.emitExpr(el)
	}
	e.emit(vm.MakeList, byte(len(n.Elems)), 0, line)
}

func (e *emitter) emitMapInit(n *ast.MapInit, line int) {
	for _, entry := range n.Entries {
		e.emitExpr(entry.Key)
		e.emitExpr(entry.Value)
	}
	e.emit(vm.MakeMap, byte(len(n.Entries)), 0, line)
}

func (e *emitter) emitArrayInit(n *ast.ArrayInit, line int) {
	for _, el := range n.Elems {
		e.emitExpr(el)
	}
	e.emit(vm.MakeArray, byte(len(n.Elems)), 0, line)
}

// emitNewObject special-cases Map/HashMap: registry.NewBuiltins registers
// a constructor for them so `new HashMap()` resolves like any other
// object construction, but their runtime value is a *vm.PMap, not an
// *Instance — the same no-host-class shape List/String methods need
// InvokeDynamic for.
func (e *emitter) emitNewObject(n *ast.NewObjectExpr, line int) {
	t := e.resolveTypeForEmit(n.TypeName)
	if t != nil && t.Struct != nil && (t.Struct.Name == "Map" || t.Struct.Name == "HashMap") {
		e.emit(vm.MakeMap, 0, 0, line)
		return
	}
	for _, arg := range n.Args {
		e.emitExpr(arg)
	}
	if t == nil || t.Struct == nil {
		e.emitSimple(vm.PushNull, line)
		return
	}
	ctor := t.Struct.LookupCtor(len(n.Args))
	if ctor == nil {
		e.errf(n.Pos(), "internal: unresolved constructor for %s/%d", t, len(n.Args))
		e.emitSimple(vm.PushNull, line)
		return
	}
	idx := e.chunk.AddConstant(ctor)
	e.emit(vm.NewInstance, byte(len(n.Args)), idx, line)
}

func (e *emitter) emitNewArray(n *ast.NewArrayExpr, line int) {
	for _, d := range n.Dims {
		e.emitExpr(d)
	}
	dims := len(n.Dims)
	if dims == 0 {
		dims = 1
	}
	elem := e.resolveTypeForEmit(n.ElemType)
	idx := e.chunk.AddConstant(elem)
	e.emit(vm.NewArray, byte(dims), idx, line)
}

// emitFuncRef builds the runtime BoundFunc value a function-reference
// expression produces. A lambda-desugared FuncRef (Kind ==
// FuncRefCapturing with Receiver == nil, see analyzer/lambda.go) and a
// genuine `var::method` capturing reference share this same shape — the
// only difference is what Captures holds.
func (e *emitter) emitFuncRef(n *ast.FuncRef, line int) {
	fn := e.lookupFuncByName(n.MethodName)
	if fn == nil {
		e.errf(n.Pos(), "internal: unresolved function reference %s", n.MethodName)
		e.emitSimple(vm.PushNull, line)
		return
	}
	target := e.funcTarget(fn)

	captures := n.Captures
	if n.Kind == ast.FuncRefCapturing && n.Receiver != nil {
		// `var::method` — the captured instance itself is the sole capture.
		e.emitExpr(n.Receiver)
	} else {
		for _, c := range captures {
			e.emitExpr(c)
		}
	}
	n2 := len(captures)
	if n.Kind == ast.FuncRefCapturing && n.Receiver != nil {
		n2 = 1
	}
	idx := e.chunk.AddConstant(target)
	e.emit(vm.MakeClosure, byte(n2), idx, line)
}
