// Package emitter is the Code Emitter: the third compile stage, turning an
// analyzed ast.Source into a vm.Executable (spec.md §4.3). Every Ident,
// Chain link and FunctionDecl it reads has already been fully resolved by
// internal/analyzer — the emitter's only job is translating that decorated
// tree into the fixed stack-machine instruction set internal/vm defines,
// grounded on the teacher's three-file compiler split
// (internal/bytecode/compiler_core.go, compiler_statements.go,
// compiler_expressions.go): one struct holding per-compile state, a
// switch-per-node-kind dispatcher in each of stmt.go/expr.go/chain.go, and
// jump-patching helpers shared across all three.
package emitter

import (
	"fmt"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/settings"
	"github.com/painless-lang/painless/internal/token"
	"github.com/painless-lang/painless/internal/vm"
)

// loopCtx collects the jump indices a break/continue inside one loop needs
// patched once the loop's exit and continue targets are known, the same
// role the teacher's loopContext plays in compiler_statements.go.
type loopCtx struct {
	breaks    []int
	continues []int
}

// emitter holds the state threaded through one compile: the chunk currently
// being filled, its hidden-temp-slot high-water mark, the active loop
// stack, and the function table every Chain call/FuncRef resolves against.
type emitter struct {
	reg      *registry.Registry
	settings settings.Settings

	funcs      map[string]*vm.Function   // keyed by vm.FuncKey(name, totalArity)
	funcsByName map[string][]*ast.FunctionDecl

	chunk    *vm.Chunk
	nextSlot int
	maxSlot  int
	loops    []*loopCtx

	needsScore bool
	diags      []*diag.Diagnostic
}

// Emit compiles an analyzed Source into an Executable. src must already
// have been through analyzer.Analyze: every Ident carries a resolved Slot,
// every expression an Actual type, and every FunctionDecl (including
// lambda-desugared synthetic ones) its LocalCount.
func Emit(src *ast.Source, scriptName string, reg *registry.Registry, s settings.Settings) (*vm.Executable, []*diag.Diagnostic) {
	e := &emitter{
		reg:         reg,
		settings:    s,
		funcs:       make(map[string]*vm.Function),
		funcsByName: make(map[string][]*ast.FunctionDecl),
	}

	for _, fn := range src.Functions {
		key := vm.FuncKey(fn.Name, len(fn.Captures)+len(fn.Params))
		e.funcs[key] = &vm.Function{Name: fn.Name, Arity: len(fn.Params), Captures: len(fn.Captures)}
		e.funcsByName[fn.Name] = append(e.funcsByName[fn.Name], fn)
	}
	for _, fn := range src.Functions {
		e.compileFunction(fn)
	}

	entry := e.compileTopLevel(src)

	exe := &vm.Executable{
		ScriptName:     scriptName,
		Entry:          entry,
		Functions:      e.funcs,
		NeedsScore:     e.needsScore,
		Reg:            reg,
		MaxLoopCounter: s.MaxLoopCounter,
	}
	return exe, e.diags
}

func (e *emitter) compileFunction(fn *ast.FunctionDecl) {
	key := vm.FuncKey(fn.Name, len(fn.Captures)+len(fn.Params))
	stub := e.funcs[key]

	chunk := vm.NewChunk(fn.Name)
	chunk.Params = len(fn.Captures) + len(fn.Params)
	e.chunk = chunk
	e.nextSlot = fn.LocalCount
	e.maxSlot = fn.LocalCount
	e.loops = nil

	e.emitStmt(fn.Body)
	if !fn.Body.AllEscape {
		e.chunk.EmitSimple(vm.ReturnVoid, fn.Pos().Line)
	}

	chunk.LocalCount = e.maxSlot
	stub.Chunk = chunk
}

// compileTopLevel compiles a script's own statements into the Entry chunk.
// When the body's final statement is a bare expression, its value becomes
// the script's result (the implicit-return convention a search-engine
// scoring script relies on) rather than being discarded like an ordinary
// ExprStmt.
func (e *emitter) compileTopLevel(src *ast.Source) *vm.Chunk {
	chunk := vm.NewChunk("<script>")
	e.chunk = chunk
	e.nextSlot = src.LocalCount
	e.maxSlot = src.LocalCount
	e.loops = nil

	for i, stmt := range src.Body {
		if i == len(src.Body)-1 {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				e.emitExpr(es.X)
				e.chunk.EmitSimple(vm.Return, es.Pos().Line)
				chunk.LocalCount = e.maxSlot
				return chunk
			}
		}
		e.emitStmt(stmt)
	}
	if len(src.Body) == 0 || !src.Body[len(src.Body)-1].Meta().AllEscape {
		e.chunk.EmitSimple(vm.ReturnVoid, 0)
	}
	chunk.LocalCount = e.maxSlot
	return chunk
}

func (e *emitter) emit(op vm.OpCode, a byte, b uint16, line int) int {
	return e.chunk.Emit(op, a, b, line)
}

func (e *emitter) emitSimple(op vm.OpCode, line int) int {
	return e.chunk.EmitSimple(op, line)
}

func (e *emitter) emitConst(v any, line int) {
	idx := e.chunk.AddConstant(v)
	e.emit(vm.PushConst, 0, idx, line)
}

// allocTemp hands out a hidden local slot beyond the analyzer's LocalCount
// for emitter-only bookkeeping (for-each iteration state, the receiver/index
///value staging a chain compound-assignment needs). Slots are never
// reclaimed, matching the analyzer's own monotonic scopeStack.declare.
func (e *emitter) allocTemp() int {
	slot := e.nextSlot
	e.nextSlot++
	if e.nextSlot > e.maxSlot {
		e.maxSlot = e.nextSlot
	}
	return slot
}

func (e *emitter) pushLoop() *loopCtx {
	lc := &loopCtx{}
	e.loops = append(e.loops, lc)
	return lc
}

func (e *emitter) popLoop() {
	e.loops = e.loops[:len(e.loops)-1]
}

func (e *emitter) currentLoop() *loopCtx {
	if len(e.loops) == 0 {
		return nil
	}
	return e.loops[len(e.loops)-1]
}

func (e *emitter) patchTo(indices []int, dst int) {
	for _, idx := range indices {
		e.chunk.PatchJumpTo(idx, dst)
	}
}

func (e *emitter) errf(pos token.Position, format string, args ...any) {
	e.diags = append(e.diags, &diag.Diagnostic{
		Category: diag.Type,
		Code:     "internal-emit-error",
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

func (e *emitter) resolveTypeForEmit(name string) *registry.Type {
	if name == "" || name == "def" {
		return e.reg.DefType()
	}
	if t := e.reg.LookupType(name); t != nil {
		return t
	}
	return e.reg.DefType()
}

func (e *emitter) lookupFuncByName(name string) *ast.FunctionDecl {
	cands := e.funcsByName[name]
	if len(cands) == 0 {
		return nil
	}
	return cands[0]
}

func (e *emitter) funcTarget(fn *ast.FunctionDecl) *vm.Function {
	key := vm.FuncKey(fn.Name, len(fn.Captures)+len(fn.Params))
	return e.funcs[key]
}
