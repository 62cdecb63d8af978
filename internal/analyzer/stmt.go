package analyzer

import (
	"github.com/painless-lang/painless/internal/ast"
	"github.com/painless-lang/painless/internal/diag"
	"github.com/painless-lang/painless/internal/registry"
)

// analyzeBlock analyzes a block's statements in order within a fresh nested
// scope, folding the escape-analysis flags spec.md §3/§4.2 describe:
// AllEscape is true once some statement never falls through, and every
// following statement in the same block is flagged unreachable.
func (a *Analyzer) analyzeBlock(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	a.scopes.push()
	defer a.scopes.pop()

	escaped := false
	for i, stmt := range b.Stmts {
		if escaped {
			a.errf(diag.ControlFlow, "unreachable", stmt.Pos(), "unreachable statement")
		}
		analyzed := a.analyzeStmt(stmt)
		b.Stmts[i] = analyzed
		if analyzed.Meta().AllEscape {
			escaped = true
		}
	}
	b.AllEscape = escaped
	if n := len(b.Stmts); n > 0 {
		last := b.Stmts[n-1].Meta()
		b.MethodEscape = last.MethodEscape
		b.LoopEscape = last.LoopEscape
	}
	b.StatementCount = len(b.Stmts)
	return b
}

// analyzeLoopBody analyzes a loop's body statement with loopDepth
// incremented so break/continue inside it are known to be legal, marks it
// InLoop, and marks its final statement LastLoop when the body is a Block
// (the loop statement itself is marked BeginLoop by its caller).
func (a *Analyzer) analyzeLoopBody(body ast.Statement) ast.Statement {
	a.loopDepth++
	out := a.analyzeStmt(body)
	a.loopDepth--
	out.Meta().InLoop = true
	if blk, ok := out.(*ast.Block); ok && len(blk.Stmts) > 0 {
		blk.Stmts[len(blk.Stmts)-1].Meta().LastLoop = true
	}
	return out
}

func (a *Analyzer) analyzeStmt(s ast.Statement) ast.Statement {
	if s == nil {
		return nil
	}
	s.Meta().InLoop = a.loopDepth > 0

	switch st := s.(type) {
	case *ast.Block:
		return a.analyzeBlock(st)

	case *ast.IfStmt:
		st.Cond = a.analyzeExpr(st.Cond, a.reg.BoolType())
		st.Then = a.analyzeStmt(st.Then)
		if st.Else != nil {
			st.Else = a.analyzeStmt(st.Else)
			st.AllEscape = st.Then.Meta().AllEscape && st.Else.Meta().AllEscape
			st.MethodEscape = st.Then.Meta().MethodEscape && st.Else.Meta().MethodEscape
		}
		return st

	case *ast.WhileStmt:
		st.BeginLoop = true
		st.Cond = a.analyzeExpr(st.Cond, a.reg.BoolType())
		st.Body = a.analyzeLoopBody(st.Body)
		if isStaticallyTrueCond(st.Cond) && !stmtHasReachableBreak(st.Body) {
			st.MethodEscape = true
			st.AllEscape = true
		}
		return st

	case *ast.DoWhileStmt:
		st.BeginLoop = true
		st.Body = a.analyzeLoopBody(st.Body)
		st.Cond = a.analyzeExpr(st.Cond, a.reg.BoolType())
		if isStaticallyTrueCond(st.Cond) && !stmtHasReachableBreak(st.Body) {
			st.MethodEscape = true
			st.AllEscape = true
		}
		return st

	case *ast.ForStmt:
		a.scopes.push()
		st.BeginLoop = true
		if st.Init != nil {
			st.Init = a.analyzeStmt(st.Init)
		}
		if st.Cond != nil {
			st.Cond = a.analyzeExpr(st.Cond, a.reg.BoolType())
		}
		if st.Post != nil {
			st.Post = a.analyzeStmt(st.Post)
		}
		st.Body = a.analyzeLoopBody(st.Body)
		a.scopes.pop()
		return st

	case *ast.ForEachStmt:
		a.scopes.push()
		st.BeginLoop = true
		st.Iterand = a.analyzeExpr(st.Iterand, nil)
		elemType := a.elementTypeOf(st.Iterand.Meta().Actual)
		if st.TypeName != "" {
			declared := a.resolveTypeName(st.TypeName)
			if declared == nil {
				a.errf(diag.Resolution, "unknown-type", st.Pos(), "unknown type %q", st.TypeName)
				declared = a.reg.DefType()
			}
			elemType = declared
		}
		v := a.scopes.declare(st.VarName, elemType)
		st.Slot = v.Slot
		st.Body = a.analyzeLoopBody(st.Body)
		a.scopes.pop()
		return st

	case *ast.DeclBlock:
		for _, d := range st.Decls {
			typ := a.resolveTypeName(d.TypeName)
			if typ == nil {
				a.errf(diag.Resolution, "unknown-type", st.Pos(), "unknown type %q", d.TypeName)
				typ = a.reg.DefType()
			}
			if a.scopes.declaredInCurrent(d.Name) {
				a.errf(diag.Resolution, "dup-var", st.Pos(), "variable %q is already declared in this scope", d.Name)
			}
			if d.Init != nil {
				d.Init = a.analyzeExpr(d.Init, typ)
			}
			v := a.scopes.declare(d.Name, typ)
			d.Slot = v.Slot
		}
		return st

	case *ast.ExprStmt:
		st.X = a.analyzeExpr(st.X, nil)
		return st

	case *ast.BreakStmt:
		st.AllEscape = true
		st.LoopEscape = true
		st.AnyBreak = true
		if a.loopDepth == 0 {
			a.errf(diag.ControlFlow, "break-outside-loop", st.Pos(), "break outside of a loop")
		}
		return st

	case *ast.ContinueStmt:
		st.AllEscape = true
		st.LoopEscape = true
		st.AnyContinue = true
		if a.loopDepth == 0 {
			a.errf(diag.ControlFlow, "continue-outside-loop", st.Pos(), "continue outside of a loop")
		}
		return st

	case *ast.ReturnStmt:
		st.AllEscape = true
		st.MethodEscape = true
		st.LoopEscape = true
		if a.currentFunc != nil {
			ret := a.resolveReturnType(a.currentFunc.ReturnTypeName)
			if st.X != nil {
				st.X = a.analyzeExpr(st.X, ret)
			} else if ret != nil && ret != a.reg.VoidType() {
				a.errf(diag.Type, "missing-return-value", st.Pos(), "function %s must return a value", a.currentFunc.Name)
			}
		} else if st.X != nil {
			st.X = a.analyzeExpr(st.X, nil)
		}
		return st

	case *ast.ThrowStmt:
		st.AllEscape = true
		st.MethodEscape = true
		st.LoopEscape = true
		st.X = a.analyzeExpr(st.X, a.reg.ObjectType())
		return st

	case *ast.TryStmt:
		st.Body = a.analyzeBlock(st.Body)
		allCatchesEscape := len(st.Catches) > 0
		for i := range st.Catches {
			a.scopes.push()
			typ := a.resolveTypeName(st.Catches[i].TypeName)
			if typ == nil {
				typ = a.reg.LookupType("Exception")
			}
			v := a.scopes.declare(st.Catches[i].VarName, typ)
			st.Catches[i].Slot = v.Slot
			st.Catches[i].Body = a.analyzeBlock(st.Catches[i].Body)
			if !st.Catches[i].Body.AllEscape {
				allCatchesEscape = false
			}
			a.scopes.pop()
		}
		if st.Finally != nil {
			st.Finally = a.analyzeBlock(st.Finally)
		}
		st.AllEscape = (st.Finally != nil && st.Finally.AllEscape) ||
			(st.Body.AllEscape && allCatchesEscape)
		return st

	case *ast.FunctionDecl:
		// top-level declarations are analyzed by Analyze's own driver loop,
		// never reached through ordinary statement recursion.
		return st

	default:
		a.errf(diag.Type, "unhandled-stmt", s.Pos(), "internal: unhandled statement %T", s)
		return s
	}
}

// isStaticallyTrueCond reports whether cond folded to the constant boolean
// true (fold.go's foldLogical/literal folding already computed it), the
// trigger spec.md §4.2's "statically-true loop" escape rule keys off.
func isStaticallyTrueCond(cond ast.Expression) bool {
	if cond == nil {
		return false
	}
	c := cond.Meta().Constant
	if c == nil {
		return false
	}
	b, ok := c.Value.(bool)
	return ok && b
}

// stmtHasReachableBreak reports whether s contains a break that targets
// its own enclosing loop — i.e. a break not already claimed by a nested
// loop (that break belongs to the nested loop, not this one). A
// statically-true loop only escapes via method/loop exit (spec.md §4.2)
// when no such break exists.
func stmtHasReachableBreak(s ast.Statement) bool {
	switch st := s.(type) {
	case nil:
		return false
	case *ast.BreakStmt:
		return true
	case *ast.Block:
		if st == nil {
			return false
		}
		for _, inner := range st.Stmts {
			if stmtHasReachableBreak(inner) {
				return true
			}
		}
		return false
	case *ast.IfStmt:
		return stmtHasReachableBreak(st.Then) || stmtHasReachableBreak(st.Else)
	case *ast.TryStmt:
		if stmtHasReachableBreak(st.Body) {
			return true
		}
		for _, c := range st.Catches {
			if stmtHasReachableBreak(c.Body) {
				return true
			}
		}
		return stmtHasReachableBreak(st.Finally)
	default:
		// WhileStmt/DoWhileStmt/ForStmt/ForEachStmt: any break inside
		// belongs to that nested loop, not the one being checked.
		return false
	}
}

// elementTypeOf resolves the per-iteration type a for-each loop binds its
// variable to: an array's Elem, or def for anything else (host Iterable
// shapes like List/Map are iterated dynamically, spec.md §4.2).
func (a *Analyzer) elementTypeOf(t *registry.Type) *registry.Type {
	if t != nil && t.Sort == registry.Array {
		return t.Elem
	}
	return a.reg.DefType()
}
