// Package analyzer implements the two-phase Semantic Analyzer: phase one
// registers every top-level function's signature so forward calls resolve,
// phase two walks each function body and the script's top-level statements,
// propagating expected/actual types, inserting casts, folding constants,
// desugaring lambdas and computing escape-analysis flags (spec.md §4.2).
package analyzer

import (
	"fmt"

	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
	"github.com/painless-lang/painless/internal/settings"
	"github.com/painless-lang/painless/internal/token"
)

// funcKey is the (name, arity) pair top-level functions are resolved by —
// Painless has no overloading beyond arity, same as struct members.
type funcKey struct {
	Name  string
	Arity int
}

// Analyzer holds the state threaded through one script's phase-two walk: the
// frozen Registry it resolves names against, the function signature table
// built in phase one, the active scope stack, and the diagnostics collected
// along the way.
type Analyzer struct {
	reg      *registry.Registry
	settings settings.Settings

	funcs       map[funcKey]*ast.FunctionDecl
	currentFunc *ast.FunctionDecl

	scopes    *scopeStack
	loopDepth int

	synthetic      []*ast.FunctionDecl
	syntheticSeq   int

	diags []*diag.Diagnostic
}

// Analyze runs both phases over src and returns the (possibly mutated-in-
// place) Source, appended with any synthetic functions lambda desugaring
// produced, alongside every diagnostic collected. A caller should check
// diag.Report.HasErrors (after wrapping the slice) before handing the
// result to the emitter — analysis always finishes the walk rather than
// aborting at the first error, so later stages see as complete a picture as
// possible (spec.md §4.2 "analysis never stops early").
func Analyze(src *ast.Source, reg *registry.Registry, s settings.Settings) (*ast.Source, []*diag.Diagnostic) {
	a := &Analyzer{
		reg:      reg,
		settings: s,
		funcs:    make(map[funcKey]*ast.FunctionDecl),
		scopes:   newScopeStack(),
	}

	for _, fn := range src.Functions {
		a.registerSignature(fn)
	}

	for _, fn := range src.Functions {
		a.analyzeFunction(fn)
	}
	a.analyzeTopLevel(src)

	src.Functions = append(src.Functions, a.synthetic...)
	return src, a.diags
}

// registerSignature adds fn's (name, arity) to the call table, flagging a
// Resolution-category redeclaration if the slot is already taken. Called
// before any body is analyzed so forward references between top-level
// functions resolve regardless of declaration order (spec.md §4.2).
func (a *Analyzer) registerSignature(fn *ast.FunctionDecl) {
	key := funcKey{Name: fn.Name, Arity: len(fn.Params)}
	if _, exists := a.funcs[key]; exists {
		a.errf(diag.Resolution, "dup-function", fn.Pos(), "function %s/%d is already declared", fn.Name, len(fn.Params))
		return
	}
	a.funcs[key] = fn
}

// lookupFunction resolves a call target by (name, arity).
func (a *Analyzer) lookupFunction(name string, arity int) *ast.FunctionDecl {
	return a.funcs[funcKey{Name: name, Arity: arity}]
}

func (a *Analyzer) analyzeFunction(fn *ast.FunctionDecl) {
	savedFunc, savedScopes := a.currentFunc, a.scopes
	a.analyzeFunctionBody(fn)
	a.currentFunc, a.scopes = savedFunc, savedScopes
}

// analyzeFunctionBody declares fn's captures and parameters into a fresh
// scope, walks its body and records the local slot count, leaving
// a.currentFunc/a.scopes pointed at fn's own — callers restore the outer
// state themselves, so this can run both for a top-level function (from a
// clean slate) and, reentrantly, for a lambda's synthetic function while
// the enclosing expression is still mid-analysis (spec.md §4.2 "Lambda
// handling").
func (a *Analyzer) analyzeFunctionBody(fn *ast.FunctionDecl) {
	a.currentFunc = fn
	a.scopes = newScopeStack()

	for i := range fn.Captures {
		a.declareParam(&fn.Captures[i])
	}
	for i := range fn.Params {
		a.declareParam(&fn.Params[i])
	}

	body := a.analyzeBlock(fn.Body)
	fn.Body = body
	fn.LocalCount = a.scopes.nextSlot

	retType := a.resolveReturnType(fn.ReturnTypeName)
	if retType != nil && retType != a.reg.VoidType() && !fn.Body.AllEscape {
		a.errf(diag.ControlFlow, "missing-return", fn.Pos(),
			"function %s must return a value on every path", fn.Name)
	}
}

// resolveReturnType maps a FunctionDecl's declared return type name to the
// Registry's Type: "void" maps to the void type, and every other name,
// including "" and "def" (both the dynamic type), goes through
// resolveTypeName the same as any other caller.
func (a *Analyzer) resolveReturnType(name string) *registry.Type {
	if name == "void" {
		return a.reg.VoidType()
	}
	return a.resolveTypeName(name)
}

func (a *Analyzer) declareParam(p *ast.Param) {
	typ := a.resolveTypeName(p.TypeName)
	if typ == nil {
		a.errf(diag.Resolution, "unknown-type", token.Position{}, "unknown parameter type %q", p.TypeName)
		typ = a.reg.DefType()
	}
	v := a.scopes.declare(p.Name, typ)
	p.Slot = v.Slot
}

// reservedScriptSlots binds spec.md §2's small closed set of reserved names
// to fixed local slots in the script's top-level frame, in the order the
// VM's one-time prelude (Machine.Execute) populates them. "scorer" and
// "#loop" are the two names from that set with no Ident-shaped runtime
// representation here: #loop is a compiler-internal budget, not a value a
// script can read, and scorer's real host object has no stand-in in this
// whitelist, so it is omitted rather than bound to a nil forever.
var reservedScriptSlots = []string{"params", "ctx", "doc", "_score"}

// analyzeTopLevel walks the script's implicit main body: the statements
// that appear outside any function declaration (spec.md §2). The reserved
// names predeclare into fixed slots before anything else so `params['a']`,
// `_score`, etc. resolve as ordinary def-typed locals.
func (a *Analyzer) analyzeTopLevel(src *ast.Source) {
	a.currentFunc = nil
	a.scopes = newScopeStack()
	for _, name := range reservedScriptSlots {
		a.scopes.declare(name, a.reg.DefType())
	}
	for i, stmt := range src.Body {
		src.Body[i] = a.analyzeStmt(stmt)
	}
	if n := len(src.Body); n > 0 && src.Body[n-1] != nil {
		src.Body[n-1].Meta().LastSource = true
	}
	src.LocalCount = a.scopes.nextSlot
}

func (a *Analyzer) errf(cat diag.Category, code string, pos token.Position, format string, args ...any) {
	a.diags = append(a.diags, &diag.Diagnostic{
		Category: cat,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

func (a *Analyzer) warnf(cat diag.Category, code string, pos token.Position, format string, args ...any) {
	a.diags = append(a.diags, &diag.Diagnostic{
		Category: cat,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Warning:  true,
	})
}

// nextSyntheticName produces a stable, collision-free name for a lambda's
// desugared top-level function (spec.md §4.2 "Lambda handling").
func (a *Analyzer) nextSyntheticName() string {
	a.syntheticSeq++
	return fmt.Sprintf("$lambda%d", a.syntheticSeq)
}
